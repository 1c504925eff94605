package service

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	"campus-intake/internal/infrastructure/cache"
	"campus-intake/internal/infrastructure/repository"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/regcode"

	"github.com/google/uuid"
)

type wizardFixture struct {
	store   *repository.MockEnrollmentStore
	service serviceInterfaces.WizardService
	levelID uuid.UUID
	slotID  uuid.UUID
}

func newWizardFixture(t *testing.T, capacity int) *wizardFixture {
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
		Gender:    domain.GenderFemale,
		Capacity:  capacity,
	}
	if err := store.Create(ctx, slot); err != nil {
		t.Fatalf("Failed to seed slot: %v", err)
	}

	enrollment := NewEnrollmentService(
		store.Slots(),
		store.Levels(),
		store.Settings(),
		store.Idempotency(),
		memCache,
		nil,
		regcode.NewGenerator(""),
		3,
	)

	return &wizardFixture{
		store:   store,
		service: NewWizardService(enrollment, store.Slots(), memCache, 30*time.Minute),
		levelID: level.LevelID,
		slotID:  slot.SlotID,
	}
}

func (f *wizardFixture) profile() domain.ProfileForm {
	return domain.ProfileForm{
		Surname:   "Abubakar",
		Firstname: "Zainab",
		Whatsapp:  "+2348098765432",
		Email:     "zainab@example.com",
		Gender:    domain.GenderFemale,
		Address:   "3 College Road",
		LevelID:   f.levelID,
	}
}

// startConfirming drives a fresh session to the confirmation step.
func (f *wizardFixture) startConfirming(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	token, _, err := f.service.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start wizard: %v", err)
	}
	if _, err := f.service.SubmitProfile(ctx, token, f.profile()); err != nil {
		t.Fatalf("Failed to submit profile: %v", err)
	}
	if _, err := f.service.SelectSlot(ctx, token, f.slotID); err != nil {
		t.Fatalf("Failed to select slot: %v", err)
	}
	return token
}

func TestWizardService_FullFlow(t *testing.T) {
	f := newWizardFixture(t, 5)
	ctx := context.Background()

	token := f.startConfirming(t)

	wizard, err := f.service.Confirm(ctx, token)
	if err != nil {
		t.Fatalf("Expected confirmation to succeed, got %v", err)
	}
	if wizard.State != domain.StateDone {
		t.Fatalf("Expected state %s, got %s", domain.StateDone, wizard.State)
	}
	if wizard.Registration == nil {
		t.Fatal("Expected the committed registration on the wizard")
	}
	if wizard.Registration.RegistrationCode == "" {
		t.Error("Expected the registration to carry a code")
	}

	slot, err := f.store.GetByID(ctx, f.slotID)
	if err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}
	if slot.Booked != 1 {
		t.Errorf("Expected one seat claimed, got %d", slot.Booked)
	}
}

func TestWizardService_ConfirmRetryReplaysReservation(t *testing.T) {
	f := newWizardFixture(t, 5)
	ctx := context.Background()

	token := f.startConfirming(t)

	first, err := f.service.Confirm(ctx, token)
	if err != nil {
		t.Fatalf("Expected confirmation to succeed, got %v", err)
	}

	// A second confirm for the same session is an invalid transition,
	// not a second reservation.
	if _, err := f.service.Confirm(ctx, token); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition on re-confirm, got %v", err)
	}

	slot, err := f.store.GetByID(ctx, f.slotID)
	if err != nil {
		t.Fatalf("Failed to reload slot: %v", err)
	}
	if slot.Booked != 1 {
		t.Errorf("Expected one seat claimed after retry, got %d", slot.Booked)
	}
	if first.Registration == nil {
		t.Fatal("Expected the first confirmation to carry the registration")
	}
}

func TestWizardService_ConfirmSlotFull(t *testing.T) {
	f := newWizardFixture(t, 1)
	ctx := context.Background()

	token := f.startConfirming(t)

	// Someone else claims the last seat between selection and confirm.
	if _, err := f.store.Reserve(ctx, f.slotID, &domain.Student{
		Surname:          "Eze",
		Firstname:        "Ngozi",
		Whatsapp:         "+2347022222222",
		Email:            "ngozi@example.com",
		Gender:           domain.GenderFemale,
		Address:          "5 Market Lane",
		LevelID:          f.levelID,
		RegistrationCode: "AI-TESTF001",
	}); err != nil {
		t.Fatalf("Failed to claim the last seat: %v", err)
	}

	wizard, err := f.service.Confirm(ctx, token)
	if !errors.Is(err, domain.ErrSlotFull) {
		t.Fatalf("Expected ErrSlotFull, got %v", err)
	}
	if wizard == nil {
		t.Fatal("Expected the updated wizard alongside the error")
	}
	if wizard.State != domain.StatePickingSlot {
		t.Errorf("Expected wizard back at %s, got %s", domain.StatePickingSlot, wizard.State)
	}
	if !wizard.IsExcluded(f.slotID) {
		t.Error("Expected the full slot to be excluded from the retry")
	}

	// The session survives and keeps the collected profile.
	reloaded, err := f.service.Get(ctx, token)
	if err != nil {
		t.Fatalf("Expected the session to survive, got %v", err)
	}
	if reloaded.Profile.Surname != "Abubakar" {
		t.Error("Expected the profile to survive the failed confirmation")
	}
}

func TestWizardService_SelectFullSlot(t *testing.T) {
	f := newWizardFixture(t, 1)
	ctx := context.Background()

	if _, err := f.store.Reserve(ctx, f.slotID, &domain.Student{
		Surname:          "Lawal",
		Firstname:        "Kemi",
		Whatsapp:         "+2347033333333",
		Email:            "kemi@example.com",
		Gender:           domain.GenderFemale,
		Address:          "8 Garden Avenue",
		LevelID:          f.levelID,
		RegistrationCode: "AI-TESTG001",
	}); err != nil {
		t.Fatalf("Failed to fill the slot: %v", err)
	}

	token, _, err := f.service.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start wizard: %v", err)
	}
	if _, err := f.service.SubmitProfile(ctx, token, f.profile()); err != nil {
		t.Fatalf("Failed to submit profile: %v", err)
	}

	if _, err := f.service.SelectSlot(ctx, token, f.slotID); !errors.Is(err, domain.ErrSlotFull) {
		t.Fatalf("Expected ErrSlotFull selecting a full slot, got %v", err)
	}
	if _, err := f.service.SelectSlot(ctx, token, uuid.New()); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("Expected ErrSlotNotFound selecting an unknown slot, got %v", err)
	}
}

func TestWizardService_UnknownToken(t *testing.T) {
	f := newWizardFixture(t, 5)
	ctx := context.Background()

	if _, err := f.service.Get(ctx, "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound, got %v", err)
	}
	if _, err := f.service.Confirm(ctx, "no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound on confirm, got %v", err)
	}
}

func TestWizardService_Abandon(t *testing.T) {
	f := newWizardFixture(t, 5)
	ctx := context.Background()

	token, _, err := f.service.Start(ctx)
	if err != nil {
		t.Fatalf("Failed to start wizard: %v", err)
	}

	if err := f.service.Abandon(ctx, token); err != nil {
		t.Fatalf("Expected abandon to succeed, got %v", err)
	}
	if _, err := f.service.Get(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected the abandoned session to be gone, got %v", err)
	}
}
