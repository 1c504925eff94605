package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/logger"

	"github.com/google/uuid"
)

const settingsCacheTTL = time.Minute

// availabilityService implements the AvailabilityService interface.
// Reads go cache first; a miss falls through to the repository and
// repopulates. Full slots stay in the listing with booked == capacity
// so clients can render them as unavailable. While registration is
// closed both listings come back empty; only the write path rejects
// with an error.
type availabilityService struct {
	slotRepo     infrastructure.SlotRepository
	settingsRepo infrastructure.SettingsRepository
	cache        infrastructure.CacheService
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	slotRepo infrastructure.SlotRepository,
	settingsRepo infrastructure.SettingsRepository,
	cache infrastructure.CacheService,
) serviceInterfaces.AvailabilityService {
	return &availabilityService{
		slotRepo:     slotRepo,
		settingsRepo: settingsRepo,
		cache:        cache,
	}
}

// ListAvailableDates returns the future dates with at least one open
// slot for the level and gender, in ascending order
func (s *availabilityService) ListAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error) {
	open, err := s.registrationOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return []time.Time{}, nil
	}

	if dates, err := s.cache.GetAvailableDates(ctx, levelID, gender); err == nil {
		return dates, nil
	} else if !errors.Is(err, infrastructure.ErrCacheMiss) {
		logger.Warn("Availability date cache read failed: %v", err)
	}

	dates, err := s.slotRepo.ListAvailableDates(ctx, levelID, gender)
	if err != nil {
		logger.Error("Failed to list available dates: %v", err)
		return nil, fmt.Errorf("failed to list available dates: %w", err)
	}

	if err := s.cache.SetAvailableDates(ctx, levelID, gender, dates, availabilityTTL); err != nil {
		logger.Warn("Availability date cache write failed: %v", err)
	}

	return dates, nil
}

// ListSlots returns the slots of one day for the level and gender,
// ordered by start time, full ones included
func (s *availabilityService) ListSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error) {
	open, err := s.registrationOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return []*domain.AppointmentSlot{}, nil
	}

	if slots, err := s.cache.GetSlots(ctx, date, levelID, gender); err == nil {
		return slots, nil
	} else if !errors.Is(err, infrastructure.ErrCacheMiss) {
		logger.Warn("Slot cache read failed: %v", err)
	}

	slots, err := s.slotRepo.ListByDateLevelGender(ctx, date, levelID, gender)
	if err != nil {
		logger.Error("Failed to list slots: %v", err)
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	if err := s.cache.SetSlots(ctx, date, levelID, gender, slots, availabilityTTL); err != nil {
		logger.Warn("Slot cache write failed: %v", err)
	}

	return slots, nil
}

// registrationOpen reports whether public registration is accepting
// bookings. The settings row is cached briefly; closing registration
// takes effect within the TTL.
func (s *availabilityService) registrationOpen(ctx context.Context) (bool, error) {
	settings, err := s.cache.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, infrastructure.ErrCacheMiss) {
			logger.Warn("Settings cache read failed: %v", err)
		}
		settings, err = s.settingsRepo.Get(ctx)
		if err != nil {
			logger.Error("Failed to load settings: %v", err)
			return false, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := s.cache.SetSettings(ctx, settings, settingsCacheTTL); err != nil {
			logger.Warn("Settings cache write failed: %v", err)
		}
	}

	return settings.RegistrationOpen, nil
}
