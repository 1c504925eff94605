package interfaces

import (
	"context"
	"errors"
	"time"

	domain "campus-intake/internal/domain/enrollment"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned when a key is absent. Callers fall back to
// the repository and repopulate.
var ErrCacheMiss = errors.New("cache miss")

// CacheService caches availability snapshots, the settings row and
// in-progress wizard sessions. Availability reads served from here may
// be slightly stale; the reservation transaction never consults the
// cache for its capacity decision.
type CacheService interface {
	// Availability snapshots
	GetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error)
	SetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender, dates []time.Time, ttl time.Duration) error
	GetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error)
	SetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender, slots []*domain.AppointmentSlot, ttl time.Duration) error
	// InvalidateAvailability drops the date list and the slot list for
	// one (level, gender, date) partition after a commit or admin edit.
	InvalidateAvailability(ctx context.Context, levelID uuid.UUID, gender domain.Gender, date time.Time) error

	// Settings
	GetSettings(ctx context.Context) (*domain.AppSettings, error)
	SetSettings(ctx context.Context, settings *domain.AppSettings, ttl time.Duration) error
	InvalidateSettings(ctx context.Context) error

	// Wizard sessions
	GetWizard(ctx context.Context, token string) (*domain.Wizard, error)
	SetWizard(ctx context.Context, token string, wizard *domain.Wizard, ttl time.Duration) error
	DeleteWizard(ctx context.Context, token string) error

	// Generic operations
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error

	// Health and connection management
	Health(ctx context.Context) error
	Close() error
}
