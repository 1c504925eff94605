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

	"github.com/google/uuid"
)

type scheduleFixture struct {
	store   *repository.MockEnrollmentStore
	service serviceInterfaces.ScheduleService
	levelID uuid.UUID
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()

	store := repository.NewMockEnrollmentStore()
	memCache := cache.NewMemoryCache()

	level := &domain.Level{Name: "Beginner", IsActive: true}
	if err := store.CreateLevel(context.Background(), level); err != nil {
		t.Fatalf("Failed to seed level: %v", err)
	}

	return &scheduleFixture{
		store: store,
		service: NewScheduleService(
			store.Slots(),
			store.Students(),
			store.Levels(),
			store.Settings(),
			nil,
			memCache,
		),
		levelID: level.LevelID,
	}
}

func (f *scheduleFixture) newSlot(capacity int) *domain.AppointmentSlot {
	return &domain.AppointmentSlot{
		Date:      time.Now().AddDate(0, 0, 2),
		StartTime: "09:00",
		EndTime:   "10:00",
		LevelID:   f.levelID,
		Gender:    domain.GenderMale,
		Capacity:  capacity,
	}
}

func TestScheduleService_CreateSlot(t *testing.T) {
	f := newScheduleFixture(t)

	slot, err := f.service.CreateSlot(context.Background(), f.newSlot(20))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if slot.SlotID == uuid.Nil {
		t.Error("Expected the slot to receive an ID")
	}
	if slot.Booked != 0 {
		t.Errorf("Expected a new slot to start with booked 0, got %d", slot.Booked)
	}
}

func TestScheduleService_CreateSlot_Invalid(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	badWindow := f.newSlot(20)
	badWindow.StartTime = "12:00"
	badWindow.EndTime = "09:00"
	if _, err := f.service.CreateSlot(ctx, badWindow); err == nil {
		t.Error("Expected an error for an inverted time window")
	}

	negative := f.newSlot(-1)
	if _, err := f.service.CreateSlot(ctx, negative); err == nil {
		t.Error("Expected an error for negative capacity")
	}

	unknownLevel := f.newSlot(20)
	unknownLevel.LevelID = uuid.New()
	if _, err := f.service.CreateSlot(ctx, unknownLevel); !errors.Is(err, domain.ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestScheduleService_UpdateSlot_CapacityBelowBooked(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	slot, err := f.service.CreateSlot(ctx, f.newSlot(10))
	if err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}

	// Claim three seats directly through the store.
	for i := 0; i < 3; i++ {
		if _, err := f.store.Reserve(ctx, slot.SlotID, &domain.Student{
			Surname:          "Adeyemi",
			Firstname:        "Tunde",
			Whatsapp:         "+23470000000" + string(rune('0'+i)),
			Email:            "tunde@example.com",
			Gender:           domain.GenderMale,
			Address:          "9 Station Road",
			LevelID:          f.levelID,
			RegistrationCode: "AI-TESTS00" + string(rune('0'+i)),
		}); err != nil {
			t.Fatalf("Failed to seed reservation: %v", err)
		}
	}

	shrunk := *slot
	shrunk.Capacity = 2
	if _, err := f.service.UpdateSlot(ctx, &shrunk); !errors.Is(err, domain.ErrCapacityBelowBooked) {
		t.Fatalf("Expected ErrCapacityBelowBooked, got %v", err)
	}

	// Shrinking to exactly the booked count is allowed.
	shrunk.Capacity = 3
	updated, err := f.service.UpdateSlot(ctx, &shrunk)
	if err != nil {
		t.Fatalf("Expected capacity equal to booked to be accepted, got %v", err)
	}
	if updated.Capacity != 3 || updated.Booked != 3 {
		t.Errorf("Expected capacity 3 and booked 3, got %d and %d", updated.Capacity, updated.Booked)
	}
	if updated.HasRoom() {
		t.Error("Expected the slot to be full after shrinking to the booked count")
	}
}

func TestScheduleService_UpdateSlot_Unknown(t *testing.T) {
	f := newScheduleFixture(t)

	ghost := f.newSlot(10)
	ghost.SlotID = uuid.New()
	if _, err := f.service.UpdateSlot(context.Background(), ghost); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("Expected ErrSlotNotFound, got %v", err)
	}
}

func TestScheduleService_DeleteSlot(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	slot, err := f.service.CreateSlot(ctx, f.newSlot(10))
	if err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}

	if err := f.service.DeleteSlot(ctx, slot.SlotID); err != nil {
		t.Fatalf("Expected empty slot to delete, got %v", err)
	}
	if err := f.service.DeleteSlot(ctx, slot.SlotID); !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("Expected ErrSlotNotFound for a deleted slot, got %v", err)
	}
}

func TestScheduleService_DeleteSlot_WithBookings(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	slot, err := f.service.CreateSlot(ctx, f.newSlot(10))
	if err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}

	if _, err := f.store.Reserve(ctx, slot.SlotID, &domain.Student{
		Surname:          "Bakare",
		Firstname:        "Sade",
		Whatsapp:         "+2347011111111",
		Email:            "sade@example.com",
		Gender:           domain.GenderMale,
		Address:          "2 Crescent Way",
		LevelID:          f.levelID,
		RegistrationCode: "AI-TESTD001",
	}); err != nil {
		t.Fatalf("Failed to seed reservation: %v", err)
	}

	if err := f.service.DeleteSlot(ctx, slot.SlotID); !errors.Is(err, domain.ErrSlotHasBookings) {
		t.Fatalf("Expected ErrSlotHasBookings, got %v", err)
	}
}

func TestScheduleService_Levels(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateLevel(ctx, &domain.Level{Name: "Advanced", IsActive: true, SortOrder: 5})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	created.Name = "Upper Advanced"
	updated, err := f.service.UpdateLevel(ctx, created)
	if err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}
	if updated.Name != "Upper Advanced" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}

	levels, err := f.service.ListLevels(ctx, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(levels) != 2 {
		t.Errorf("Expected 2 active levels, got %d", len(levels))
	}

	if err := f.service.DeleteLevel(ctx, created.LevelID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if err := f.service.DeleteLevel(ctx, created.LevelID); !errors.Is(err, domain.ErrLevelNotFound) {
		t.Fatalf("Expected ErrLevelNotFound, got %v", err)
	}
}

func TestScheduleService_UpdateSettings(t *testing.T) {
	f := newScheduleFixture(t)
	ctx := context.Background()

	settings, err := f.service.GetSettings(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !settings.RegistrationOpen {
		t.Fatal("Expected registration to start open")
	}

	closed, err := f.service.UpdateSettings(ctx, &domain.AppSettings{RegistrationOpen: false, MaxDailyCapacity: 120})
	if err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}
	if closed.RegistrationOpen {
		t.Error("Expected registration to be closed")
	}
	if closed.MaxDailyCapacity != 120 {
		t.Errorf("Expected max daily capacity 120, got %d", closed.MaxDailyCapacity)
	}
}
