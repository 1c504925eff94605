package interfaces

import (
	"context"
	"time"

	domain "campus-intake/internal/domain/enrollment"

	"github.com/google/uuid"
)

// SlotRepository defines data access for appointment slots. Lookups
// return nil, nil when the slot does not exist; Reserve is the single
// write gateway for the booked counter outside administrative edits.
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.AppointmentSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentSlot, error)
	Update(ctx context.Context, slot *domain.AppointmentSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*domain.AppointmentSlot, int64, error)
	ListByDateLevelGender(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error)
	ListAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error)

	// Reserve atomically claims one unit of the slot's capacity and
	// inserts the student registration in the same unit of work. It
	// returns the persisted registration, or ErrSlotNotFound,
	// ErrSlotFull, ErrDuplicateCode or ErrStorageConflict with no
	// partial effect.
	Reserve(ctx context.Context, slotID uuid.UUID, student *domain.Student) (*domain.Student, error)
}

// StudentRepository defines data access for student registrations.
type StudentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	// Find matches on registration code, WhatsApp contact or name
	// fragment and returns the first match; name-fragment matches carry
	// no uniqueness guarantee.
	Find(ctx context.Context, query string) (*domain.Student, error)
	// CheckIn performs the conditional booked -> checked-in transition.
	// Exactly one concurrent caller wins; the rest observe
	// ErrAlreadyCheckedIn.
	CheckIn(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Student, error)
	List(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error)
	CountBySlot(ctx context.Context, slotID uuid.UUID) (int64, error)
}

// LevelRepository defines data access for the level directory.
type LevelRepository interface {
	Create(ctx context.Context, level *domain.Level) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Level, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Level, error)
	Update(ctx context.Context, level *domain.Level) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository reads and writes the singleton settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.AppSettings, error)
	Update(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error)
}

// IdempotencyRepository stores processed reservation requests keyed by
// the caller-supplied idempotency key.
type IdempotencyRepository interface {
	Create(ctx context.Context, key *domain.IdempotencyKey) error
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context) error
}

// LevelCount is one bar of the per-level registration breakdown.
type LevelCount struct {
	Name  string `json:"name" db:"name"`
	Value int64  `json:"value" db:"value"`
}

// SlotUtilization reports booked versus capacity for one slot.
type SlotUtilization struct {
	Date      time.Time `json:"date" db:"date"`
	StartTime string    `json:"start_time" db:"start_time"`
	Booked    int       `json:"booked" db:"booked"`
	Capacity  int       `json:"capacity" db:"capacity"`
}

// DashboardStats aggregates the admin dashboard numbers.
type DashboardStats struct {
	TotalRegistered  int64             `json:"total_registered"`
	BreakdownByLevel []LevelCount      `json:"breakdown_by_level"`
	TodayExpected    int64             `json:"today_expected"`
	CheckedIn        int64             `json:"checked_in"`
	SlotUtilization  []SlotUtilization `json:"slot_utilization"`
}

// StatsRepository answers the read-only dashboard aggregates.
type StatsRepository interface {
	DashboardStats(ctx context.Context, today time.Time) (*DashboardStats, error)
}
