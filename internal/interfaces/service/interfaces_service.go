package service

import (
	"context"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
)

// ReserveRequest is the payload of the reservation transaction: the
// target slot plus the complete applicant profile. The idempotency key
// comes from the Idempotency-Key header, not the body.
type ReserveRequest struct {
	SlotID             uuid.UUID `json:"slot_id" validate:"required"`
	domain.ProfileForm `validate:"required"`
	IdempotencyKey     string `json:"-"`
}

// EnrollmentService is the reservation transaction entry point.
type EnrollmentService interface {
	// Reserve validates the payload, then atomically claims one unit of
	// the slot's capacity and persists the registration, or fails with
	// ErrSlotFull / ErrSlotNotFound / a validation error with no
	// partial effect.
	Reserve(ctx context.Context, req *ReserveRequest) (*domain.Student, error)
}

// AvailabilityService answers which dates and slots still have room for
// a (level, gender) pair. Read-only; results may be slightly stale.
type AvailabilityService interface {
	ListAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error)
	ListSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error)
}

// CheckInService governs the booked -> checked-in transition and the
// front-desk lookup.
type CheckInService interface {
	CheckIn(ctx context.Context, studentID uuid.UUID) (*domain.Student, error)
	FindStudent(ctx context.Context, query string) (*domain.Student, error)
	ListStudents(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error)
}

// ScheduleService is the administrative interface: slot and level CRUD,
// settings and dashboard aggregates. It writes the same capacity and
// booked fields the reservation engine reads, so capacity edits below
// the current booked count are rejected.
type ScheduleService interface {
	CreateSlot(ctx context.Context, slot *domain.AppointmentSlot) (*domain.AppointmentSlot, error)
	UpdateSlot(ctx context.Context, slot *domain.AppointmentSlot) (*domain.AppointmentSlot, error)
	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
	ListSlots(ctx context.Context, limit, offset int) ([]*domain.AppointmentSlot, int64, error)
	GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.AppointmentSlot, error)

	CreateLevel(ctx context.Context, level *domain.Level) (*domain.Level, error)
	UpdateLevel(ctx context.Context, level *domain.Level) (*domain.Level, error)
	DeleteLevel(ctx context.Context, levelID uuid.UUID) error
	ListLevels(ctx context.Context, includeInactive bool) ([]*domain.Level, error)

	GetSettings(ctx context.Context) (*domain.AppSettings, error)
	UpdateSettings(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error)

	Dashboard(ctx context.Context) (*infrastructure.DashboardStats, error)
}

// WizardService sequences the enrollment flow for one browser session.
// Session state lives in the cache under a random token with a TTL, so
// abandoned sessions expire without ever touching durable storage.
type WizardService interface {
	Start(ctx context.Context) (string, *domain.Wizard, error)
	Get(ctx context.Context, token string) (*domain.Wizard, error)
	SubmitProfile(ctx context.Context, token string, form domain.ProfileForm) (*domain.Wizard, error)
	SelectSlot(ctx context.Context, token string, slotID uuid.UUID) (*domain.Wizard, error)
	Back(ctx context.Context, token string) (*domain.Wizard, error)
	// Confirm triggers exactly one reserve call for the selected slot.
	// On SlotFull or SlotNotFound the wizard returns to PickingSlot with
	// the failing slot excluded, and the typed error is surfaced.
	Confirm(ctx context.Context, token string) (*domain.Wizard, error)
	Abandon(ctx context.Context, token string) error
}
