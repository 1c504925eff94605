package repository

import (
	"context"
	"errors"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LevelRepository implements LevelRepository using GORM
type LevelRepository struct {
	db *gorm.DB
}

// NewLevelRepository creates a new GORM level repository
func NewLevelRepository(db *gorm.DB) infrastructure.LevelRepository {
	return &LevelRepository{
		db: db,
	}
}

// Create creates a new level
func (r *LevelRepository) Create(ctx context.Context, level *domain.Level) error {
	return r.db.WithContext(ctx).Create(level).Error
}

// GetByID retrieves a level by ID
func (r *LevelRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Level, error) {
	var level domain.Level
	err := r.db.WithContext(ctx).First(&level, "level_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// List retrieves levels in display order, optionally including inactive ones
func (r *LevelRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Level, error) {
	var levels []*domain.Level
	query := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// Update saves edits to a level
func (r *LevelRepository) Update(ctx context.Context, level *domain.Level) error {
	return r.db.WithContext(ctx).Model(level).
		Where("level_id = ?", level.LevelID).
		Updates(map[string]interface{}{
			"name":       level.Name,
			"is_active":  level.IsActive,
			"sort_order": level.SortOrder,
		}).Error
}

// Delete removes a level
func (r *LevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Level{}, "level_id = ?", id).Error
}
