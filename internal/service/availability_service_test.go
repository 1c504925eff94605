package service

import (
	"context"
	"testing"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	"campus-intake/internal/infrastructure/cache"
	"campus-intake/internal/infrastructure/repository"
	serviceInterfaces "campus-intake/internal/interfaces/service"

	"github.com/google/uuid"
)

type availabilityFixture struct {
	store   *repository.MockEnrollmentStore
	cache   *cache.MemoryCache
	service serviceInterfaces.AvailabilityService
	levelID uuid.UUID
}

func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()

	store := repository.NewMockEnrollmentStore()
	memCache := cache.NewMemoryCache()

	level := &domain.Level{Name: "Intermediate", IsActive: true}
	if err := store.CreateLevel(context.Background(), level); err != nil {
		t.Fatalf("Failed to seed level: %v", err)
	}

	return &availabilityFixture{
		store:   store,
		cache:   memCache,
		service: NewAvailabilityService(store.Slots(), store.Settings(), memCache),
		levelID: level.LevelID,
	}
}

func (f *availabilityFixture) addSlot(t *testing.T, daysAhead int, start string, capacity, booked int) *domain.AppointmentSlot {
	t.Helper()

	slot := &domain.AppointmentSlot{
		Date:      time.Now().AddDate(0, 0, daysAhead),
		StartTime: start,
		EndTime:   start[:2] + ":59",
		LevelID:   f.levelID,
		Gender:    domain.GenderFemale,
		Capacity:  capacity,
		Booked:    booked,
	}
	if err := f.store.Create(context.Background(), slot); err != nil {
		t.Fatalf("Failed to seed slot: %v", err)
	}
	return slot
}

func TestAvailabilityService_ListAvailableDates(t *testing.T) {
	f := newAvailabilityFixture(t)

	f.addSlot(t, 3, "09:00", 10, 0)
	f.addSlot(t, 1, "09:00", 10, 4)
	f.addSlot(t, 2, "09:00", 10, 10) // full day, must not appear

	dates, err := f.service.ListAvailableDates(context.Background(), f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(dates) != 2 {
		t.Fatalf("Expected 2 dates with open capacity, got %d", len(dates))
	}
	if !dates[0].Before(dates[1]) {
		t.Errorf("Expected dates in ascending order, got %v then %v", dates[0], dates[1])
	}
}

func TestAvailabilityService_ListSlots_IncludesFullSlots(t *testing.T) {
	f := newAvailabilityFixture(t)

	open := f.addSlot(t, 1, "09:00", 10, 3)
	full := f.addSlot(t, 1, "11:00", 5, 5)

	slots, err := f.service.ListSlots(context.Background(), open.Date, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(slots) != 2 {
		t.Fatalf("Expected both slots in the listing, got %d", len(slots))
	}
	if slots[0].StartTime != "09:00" || slots[1].StartTime != "11:00" {
		t.Errorf("Expected slots ordered by start time, got %s then %s",
			slots[0].StartTime, slots[1].StartTime)
	}
	if slots[1].SlotID != full.SlotID || slots[1].HasRoom() {
		t.Error("Expected the full slot to be listed with no room")
	}
}

func TestAvailabilityService_ListSlots_ServesFromCache(t *testing.T) {
	f := newAvailabilityFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, 1, "09:00", 10, 0)

	first, err := f.service.ListSlots(ctx, slot.Date, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("Expected 1 slot, got %d", len(first))
	}

	// A write that bypasses the service leaves the cached listing stale
	// until the TTL or an explicit invalidation.
	f.addSlot(t, 1, "11:00", 10, 0)

	second, err := f.service.ListSlots(ctx, slot.Date, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("Expected the cached listing of 1 slot, got %d", len(second))
	}

	if err := f.cache.InvalidateAvailability(ctx, f.levelID, domain.GenderFemale, slot.Date); err != nil {
		t.Fatalf("Failed to invalidate availability: %v", err)
	}

	third, err := f.service.ListSlots(ctx, slot.Date, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(third) != 2 {
		t.Fatalf("Expected fresh listing of 2 slots after invalidation, got %d", len(third))
	}
}

func TestAvailabilityService_ClosedRegistrationEmptiesListings(t *testing.T) {
	f := newAvailabilityFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, 1, "09:00", 10, 0)
	if _, err := f.store.UpdateSettings(ctx, &domain.AppSettings{RegistrationOpen: false}); err != nil {
		t.Fatalf("Failed to close registration: %v", err)
	}

	// Closed registration hides open capacity instead of erroring; the
	// listings read as if nothing were bookable.
	dates, err := f.service.ListAvailableDates(ctx, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error from date listing, got %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("Expected no dates while registration is closed, got %d", len(dates))
	}

	slots, err := f.service.ListSlots(ctx, slot.Date, f.levelID, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error from slot listing, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots while registration is closed, got %d", len(slots))
	}
}
