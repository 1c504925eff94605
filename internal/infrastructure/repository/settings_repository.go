package repository

import (
	"context"
	"errors"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// settingsRowID pins the settings table to a single row.
const settingsRowID = 1

// SettingsRepository implements SettingsRepository using GORM
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new GORM settings repository
func NewSettingsRepository(db *gorm.DB) infrastructure.SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get retrieves the singleton settings row, creating defaults on first read
func (r *SettingsRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	var settings domain.AppSettings
	err := r.db.WithContext(ctx).First(&settings, "id = ?", settingsRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = domain.AppSettings{
				ID:               settingsRowID,
				RegistrationOpen: true,
			}
			if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
				return nil, err
			}
			return &settings, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Update overwrites the singleton settings row
func (r *SettingsRepository) Update(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error) {
	settings.ID = settingsRowID
	err := r.db.WithContext(ctx).Model(&domain.AppSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]interface{}{
			"registration_open":  settings.RegistrationOpen,
			"max_daily_capacity": settings.MaxDailyCapacity,
		}).Error
	if err != nil {
		return nil, err
	}

	var persisted domain.AppSettings
	if err := r.db.WithContext(ctx).First(&persisted, "id = ?", settingsRowID).Error; err != nil {
		return nil, err
	}
	return &persisted, nil
}
