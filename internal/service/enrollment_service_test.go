package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	"campus-intake/internal/infrastructure/cache"
	"campus-intake/internal/infrastructure/repository"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/regcode"

	"github.com/google/uuid"
)

type enrollmentFixture struct {
	store   *repository.MockEnrollmentStore
	cache   *cache.MemoryCache
	service serviceInterfaces.EnrollmentService
	levelID uuid.UUID
	slotID  uuid.UUID
}

// newEnrollmentFixture seeds one level and one slot with the given
// capacity and wires the service against the in-memory store.
func newEnrollmentFixture(t *testing.T, capacity int) *enrollmentFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMockEnrollmentStore()
	memCache := cache.NewMemoryCache()

	level := &domain.Level{Name: "Beginner", IsActive: true}
	if err := store.CreateLevel(ctx, level); err != nil {
		t.Fatalf("Failed to seed level: %v", err)
	}

	slot := &domain.AppointmentSlot{
		Date:      time.Now().AddDate(0, 0, 1),
		StartTime: "09:00",
		EndTime:   "10:00",
		LevelID:   level.LevelID,
		Gender:    domain.GenderMale,
		Capacity:  capacity,
	}
	if err := store.Create(ctx, slot); err != nil {
		t.Fatalf("Failed to seed slot: %v", err)
	}

	svc := NewEnrollmentService(
		store.Slots(),
		store.Levels(),
		store.Settings(),
		store.Idempotency(),
		memCache,
		nil,
		regcode.NewGenerator(""),
		3,
	)

	return &enrollmentFixture{
		store:   store,
		cache:   memCache,
		service: svc,
		levelID: level.LevelID,
		slotID:  slot.SlotID,
	}
}

func (f *enrollmentFixture) request(n int) *serviceInterfaces.ReserveRequest {
	return &serviceInterfaces.ReserveRequest{
		SlotID: f.slotID,
		ProfileForm: domain.ProfileForm{
			Surname:   fmt.Sprintf("Surname%03d", n),
			Firstname: fmt.Sprintf("Firstname%03d", n),
			Whatsapp:  fmt.Sprintf("+2348%09d", n),
			Email:     fmt.Sprintf("applicant%03d@example.com", n),
			Gender:    domain.GenderMale,
			Address:   "12 Intake Road",
			LevelID:   f.levelID,
		},
	}
}

func (f *enrollmentFixture) slotBooked(t *testing.T) int {
	t.Helper()
	slot, err := f.store.GetByID(context.Background(), f.slotID)
	if err != nil {
		t.Fatalf("Failed to load slot: %v", err)
	}
	if slot == nil {
		t.Fatal("Expected slot to exist")
	}
	return slot.Booked
}

func TestEnrollmentService_Reserve(t *testing.T) {
	f := newEnrollmentFixture(t, 5)

	student, err := f.service.Reserve(context.Background(), f.request(1))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if student == nil {
		t.Fatal("Expected a registration, got nil")
	}

	if student.Status != domain.StatusBooked {
		t.Errorf("Expected status %s, got %s", domain.StatusBooked, student.Status)
	}
	if student.AppointmentSlotID != f.slotID {
		t.Errorf("Expected slot %s, got %s", f.slotID, student.AppointmentSlotID)
	}
	if !regcode.NewGenerator("").Pattern().MatchString(student.RegistrationCode) {
		t.Errorf("Registration code %q does not match the expected format", student.RegistrationCode)
	}
	if got := f.slotBooked(t); got != 1 {
		t.Errorf("Expected booked count 1, got %d", got)
	}
}

func TestEnrollmentService_Reserve_LastSeat(t *testing.T) {
	f := newEnrollmentFixture(t, 1)
	ctx := context.Background()

	winner, err := f.service.Reserve(ctx, f.request(1))
	if err != nil {
		t.Fatalf("Expected first reservation to succeed, got %v", err)
	}
	if winner.Status != domain.StatusBooked {
		t.Errorf("Expected winner status %s, got %s", domain.StatusBooked, winner.Status)
	}

	loser, err := f.service.Reserve(ctx, f.request(2))
	if !errors.Is(err, domain.ErrSlotFull) {
		t.Fatalf("Expected ErrSlotFull for the second reservation, got %v", err)
	}
	if loser != nil {
		t.Fatal("Expected nil registration for the losing request")
	}

	if got := f.slotBooked(t); got != 1 {
		t.Errorf("Expected booked count 1 after losing attempt, got %d", got)
	}
}

func TestEnrollmentService_Reserve_ConcurrentNeverOverbooks(t *testing.T) {
	const capacity = 5
	const attempts = 40

	f := newEnrollmentFixture(t, capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.service.Reserve(ctx, f.request(n))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var succeeded, full int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrSlotFull):
			full++
		default:
			t.Fatalf("Unexpected error from concurrent reserve: %v", err)
		}
	}

	if succeeded != capacity {
		t.Errorf("Expected exactly %d successful reservations, got %d", capacity, succeeded)
	}
	if full != attempts-capacity {
		t.Errorf("Expected %d slot-full rejections, got %d", attempts-capacity, full)
	}
	if got := f.slotBooked(t); got != capacity {
		t.Errorf("Expected booked count %d, got %d", capacity, got)
	}

	_, total, err := f.store.ListStudents(ctx, 100, 0, "")
	if err != nil {
		t.Fatalf("Failed to list students: %v", err)
	}
	if total != capacity {
		t.Errorf("Expected %d persisted registrations, got %d", capacity, total)
	}
}

func TestEnrollmentService_Reserve_ValidationFailsBeforeStorage(t *testing.T) {
	f := newEnrollmentFixture(t, 5)

	req := f.request(1)
	req.Email = "not-an-email"

	student, err := f.service.Reserve(context.Background(), req)
	if err == nil {
		t.Fatal("Expected a validation error, got nil")
	}
	if student != nil {
		t.Fatal("Expected nil registration for invalid request")
	}

	if got := f.slotBooked(t); got != 0 {
		t.Errorf("Expected booked count untouched, got %d", got)
	}
	_, total, _ := f.store.ListStudents(context.Background(), 100, 0, "")
	if total != 0 {
		t.Errorf("Expected no persisted registrations, got %d", total)
	}
}

func TestEnrollmentService_Reserve_RegistrationClosed(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	if _, err := f.store.UpdateSettings(ctx, &domain.AppSettings{RegistrationOpen: false}); err != nil {
		t.Fatalf("Failed to close registration: %v", err)
	}

	_, err := f.service.Reserve(ctx, f.request(1))
	if !errors.Is(err, domain.ErrRegistrationClosed) {
		t.Fatalf("Expected ErrRegistrationClosed, got %v", err)
	}
	if got := f.slotBooked(t); got != 0 {
		t.Errorf("Expected booked count untouched, got %d", got)
	}
}

func TestEnrollmentService_Reserve_UnknownLevel(t *testing.T) {
	f := newEnrollmentFixture(t, 5)

	req := f.request(1)
	req.LevelID = uuid.New()

	_, err := f.service.Reserve(context.Background(), req)
	if !errors.Is(err, domain.ErrLevelNotFound) {
		t.Fatalf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestEnrollmentService_Reserve_UnknownSlot(t *testing.T) {
	f := newEnrollmentFixture(t, 5)

	req := f.request(1)
	req.SlotID = uuid.New()

	_, err := f.service.Reserve(context.Background(), req)
	if !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("Expected ErrSlotNotFound, got %v", err)
	}
}

func TestEnrollmentService_Reserve_RejectsSlotMismatch(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	other := &domain.Level{Name: "Intermediate", IsActive: true}
	if err := f.store.CreateLevel(ctx, other); err != nil {
		t.Fatalf("Failed to seed level: %v", err)
	}

	wrongLevel := f.request(1)
	wrongLevel.LevelID = other.LevelID
	if _, err := f.service.Reserve(ctx, wrongLevel); !errors.Is(err, domain.ErrSlotMismatch) {
		t.Fatalf("Expected ErrSlotMismatch for a level mismatch, got %v", err)
	}

	wrongGender := f.request(2)
	wrongGender.Gender = domain.GenderFemale
	if _, err := f.service.Reserve(ctx, wrongGender); !errors.Is(err, domain.ErrSlotMismatch) {
		t.Fatalf("Expected ErrSlotMismatch for a gender mismatch, got %v", err)
	}

	if got := f.slotBooked(t); got != 0 {
		t.Errorf("Expected no capacity consumed by rejected requests, got %d", got)
	}
}

func TestEnrollmentService_Reserve_RegistrationMatchesSlot(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	req := f.request(1)
	student, err := f.service.Reserve(ctx, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	slot, err := f.store.GetByID(ctx, f.slotID)
	if err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}

	// The persisted registration carries the slot's level and gender,
	// and the payload's gender is never rewritten.
	if student.LevelID != slot.LevelID {
		t.Errorf("Expected registration level %s, got %s", slot.LevelID, student.LevelID)
	}
	if student.Gender != slot.Gender {
		t.Errorf("Expected registration gender %s, got %s", slot.Gender, student.Gender)
	}
	if student.Gender != req.Gender {
		t.Errorf("Expected payload gender %s to be preserved, got %s", req.Gender, student.Gender)
	}
}

func TestEnrollmentService_Reserve_RetriesCodeCollision(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	f.store.ReserveErrs = []error{domain.ErrDuplicateCode}

	student, err := f.service.Reserve(context.Background(), f.request(1))
	if err != nil {
		t.Fatalf("Expected retry to recover from a code collision, got %v", err)
	}
	if student == nil {
		t.Fatal("Expected a registration after retry, got nil")
	}
	if got := f.slotBooked(t); got != 1 {
		t.Errorf("Expected booked count 1 after retry, got %d", got)
	}
}

func TestEnrollmentService_Reserve_GivesUpAfterRetries(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	f.store.ReserveErrs = []error{
		domain.ErrStorageConflict,
		domain.ErrStorageConflict,
		domain.ErrStorageConflict,
	}

	_, err := f.service.Reserve(context.Background(), f.request(1))
	if !errors.Is(err, domain.ErrStorageConflict) {
		t.Fatalf("Expected the storage conflict to surface after retries, got %v", err)
	}
	if got := f.slotBooked(t); got != 0 {
		t.Errorf("Expected booked count untouched, got %d", got)
	}
}

func TestEnrollmentService_Reserve_IdempotentReplay(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	req := f.request(1)
	req.IdempotencyKey = "retry-safe-key"

	first, err := f.service.Reserve(ctx, req)
	if err != nil {
		t.Fatalf("Expected first reservation to succeed, got %v", err)
	}

	second, err := f.service.Reserve(ctx, req)
	if err != nil {
		t.Fatalf("Expected replay to succeed, got %v", err)
	}

	if second.StudentID != first.StudentID {
		t.Errorf("Expected replay to return the original registration %s, got %s",
			first.StudentID, second.StudentID)
	}
	if second.RegistrationCode != first.RegistrationCode {
		t.Errorf("Expected replayed code %s, got %s", first.RegistrationCode, second.RegistrationCode)
	}
	if got := f.slotBooked(t); got != 1 {
		t.Errorf("Expected replay to consume no additional capacity, booked = %d", got)
	}
}

func TestEnrollmentService_Reserve_IdempotencyMismatch(t *testing.T) {
	f := newEnrollmentFixture(t, 5)
	ctx := context.Background()

	req := f.request(1)
	req.IdempotencyKey = "shared-key"
	if _, err := f.service.Reserve(ctx, req); err != nil {
		t.Fatalf("Expected first reservation to succeed, got %v", err)
	}

	other := f.request(2)
	other.IdempotencyKey = "shared-key"

	_, err := f.service.Reserve(ctx, other)
	if !errors.Is(err, ErrIdempotencyMismatch) {
		t.Fatalf("Expected ErrIdempotencyMismatch, got %v", err)
	}
	if got := f.slotBooked(t); got != 1 {
		t.Errorf("Expected mismatched request to consume no capacity, booked = %d", got)
	}
}
