package service

import (
	"context"
	"fmt"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/logger"

	"github.com/google/uuid"
)

// scheduleService implements the ScheduleService interface
type scheduleService struct {
	slotRepo     infrastructure.SlotRepository
	studentRepo  infrastructure.StudentRepository
	levelRepo    infrastructure.LevelRepository
	settingsRepo infrastructure.SettingsRepository
	statsRepo    infrastructure.StatsRepository
	cache        infrastructure.CacheService
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	slotRepo infrastructure.SlotRepository,
	studentRepo infrastructure.StudentRepository,
	levelRepo infrastructure.LevelRepository,
	settingsRepo infrastructure.SettingsRepository,
	statsRepo infrastructure.StatsRepository,
	cache infrastructure.CacheService,
) serviceInterfaces.ScheduleService {
	return &scheduleService{
		slotRepo:     slotRepo,
		studentRepo:  studentRepo,
		levelRepo:    levelRepo,
		settingsRepo: settingsRepo,
		statsRepo:    statsRepo,
		cache:        cache,
	}
}

// CreateSlot adds a new appointment slot
func (s *scheduleService) CreateSlot(ctx context.Context, slot *domain.AppointmentSlot) (*domain.AppointmentSlot, error) {
	if err := s.validateSlot(ctx, slot); err != nil {
		return nil, err
	}

	slot.Booked = 0
	if err := s.slotRepo.Create(ctx, slot); err != nil {
		logger.Error("Failed to create slot: %v", err)
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	logger.Info("Created slot %s on %s %s-%s", slot.SlotID, slot.DateString(), slot.StartTime, slot.EndTime)
	s.invalidateAvailability(ctx, slot)
	return slot, nil
}

// UpdateSlot edits a slot. Capacity can grow freely but can never drop
// below the seats already claimed.
func (s *scheduleService) UpdateSlot(ctx context.Context, slot *domain.AppointmentSlot) (*domain.AppointmentSlot, error) {
	existing, err := s.slotRepo.GetByID(ctx, slot.SlotID)
	if err != nil {
		logger.Error("Failed to load slot %s: %v", slot.SlotID, err)
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrSlotNotFound
	}

	if slot.Capacity < existing.Booked {
		return nil, domain.ErrCapacityBelowBooked
	}

	if err := s.validateSlot(ctx, slot); err != nil {
		return nil, err
	}

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		logger.Error("Failed to update slot %s: %v", slot.SlotID, err)
		return nil, fmt.Errorf("failed to update slot: %w", err)
	}

	logger.Info("Updated slot %s", slot.SlotID)
	s.invalidateAvailability(ctx, existing)
	s.invalidateAvailability(ctx, slot)
	return s.slotRepo.GetByID(ctx, slot.SlotID)
}

// DeleteSlot removes a slot that nobody has reserved into
func (s *scheduleService) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		logger.Error("Failed to load slot %s: %v", slotID, err)
		return fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return domain.ErrSlotNotFound
	}

	count, err := s.studentRepo.CountBySlot(ctx, slotID)
	if err != nil {
		logger.Error("Failed to count bookings for slot %s: %v", slotID, err)
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if count > 0 || slot.Booked > 0 {
		return domain.ErrSlotHasBookings
	}

	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		logger.Error("Failed to delete slot %s: %v", slotID, err)
		return fmt.Errorf("failed to delete slot: %w", err)
	}

	logger.Info("Deleted slot %s", slotID)
	s.invalidateAvailability(ctx, slot)
	return nil
}

// ListSlots retrieves slots with pagination
func (s *scheduleService) ListSlots(ctx context.Context, limit, offset int) ([]*domain.AppointmentSlot, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.slotRepo.List(ctx, limit, offset)
}

// GetSlot retrieves one slot
func (s *scheduleService) GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.AppointmentSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, domain.ErrSlotNotFound
	}
	return slot, nil
}

// CreateLevel adds a level to the directory
func (s *scheduleService) CreateLevel(ctx context.Context, level *domain.Level) (*domain.Level, error) {
	if level.Name == "" {
		return nil, fmt.Errorf("level name is required")
	}

	if err := s.levelRepo.Create(ctx, level); err != nil {
		logger.Error("Failed to create level: %v", err)
		return nil, fmt.Errorf("failed to create level: %w", err)
	}

	logger.Info("Created level %s (%s)", level.Name, level.LevelID)
	return level, nil
}

// UpdateLevel edits a level
func (s *scheduleService) UpdateLevel(ctx context.Context, level *domain.Level) (*domain.Level, error) {
	existing, err := s.levelRepo.GetByID(ctx, level.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level: %w", err)
	}
	if existing == nil {
		return nil, domain.ErrLevelNotFound
	}

	if err := s.levelRepo.Update(ctx, level); err != nil {
		logger.Error("Failed to update level %s: %v", level.LevelID, err)
		return nil, fmt.Errorf("failed to update level: %w", err)
	}
	return s.levelRepo.GetByID(ctx, level.LevelID)
}

// DeleteLevel removes a level
func (s *scheduleService) DeleteLevel(ctx context.Context, levelID uuid.UUID) error {
	existing, err := s.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		return fmt.Errorf("failed to load level: %w", err)
	}
	if existing == nil {
		return domain.ErrLevelNotFound
	}

	if err := s.levelRepo.Delete(ctx, levelID); err != nil {
		logger.Error("Failed to delete level %s: %v", levelID, err)
		return fmt.Errorf("failed to delete level: %w", err)
	}

	logger.Info("Deleted level %s", levelID)
	return nil
}

// ListLevels retrieves the level directory
func (s *scheduleService) ListLevels(ctx context.Context, includeInactive bool) ([]*domain.Level, error) {
	return s.levelRepo.List(ctx, includeInactive)
}

// GetSettings retrieves the application settings
func (s *scheduleService) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettings writes the application settings and drops the cached
// copy so the new gate takes effect immediately
func (s *scheduleService) UpdateSettings(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error) {
	persisted, err := s.settingsRepo.Update(ctx, settings)
	if err != nil {
		logger.Error("Failed to update settings: %v", err)
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	if err := s.cache.InvalidateSettings(ctx); err != nil {
		logger.Warn("Failed to invalidate settings cache: %v", err)
	}

	logger.Info("Settings updated: registration_open=%t", persisted.RegistrationOpen)
	return persisted, nil
}

// Dashboard retrieves the admin dashboard aggregates
func (s *scheduleService) Dashboard(ctx context.Context) (*infrastructure.DashboardStats, error) {
	stats, err := s.statsRepo.DashboardStats(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to load dashboard stats: %v", err)
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *scheduleService) validateSlot(ctx context.Context, slot *domain.AppointmentSlot) error {
	if slot.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if slot.StartTime == "" || slot.EndTime == "" || slot.StartTime >= slot.EndTime {
		return fmt.Errorf("slot window must have start_time before end_time")
	}
	if slot.Gender != domain.GenderMale && slot.Gender != domain.GenderFemale {
		return fmt.Errorf("slot gender must be Male or Female")
	}

	level, err := s.levelRepo.GetByID(ctx, slot.LevelID)
	if err != nil {
		return fmt.Errorf("failed to load level: %w", err)
	}
	if level == nil {
		return domain.ErrLevelNotFound
	}
	return nil
}

func (s *scheduleService) invalidateAvailability(ctx context.Context, slot *domain.AppointmentSlot) {
	if err := s.cache.InvalidateAvailability(ctx, slot.LevelID, slot.Gender, slot.Date); err != nil {
		logger.Warn("Failed to invalidate availability cache: %v", err)
	}
}
