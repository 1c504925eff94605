package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	"campus-intake/internal/infrastructure/repository"
	serviceInterfaces "campus-intake/internal/interfaces/service"

	"github.com/google/uuid"
)

type checkinFixture struct {
	store   *repository.MockEnrollmentStore
	service serviceInterfaces.CheckInService
	slotID  uuid.UUID
	levelID uuid.UUID
}

func newCheckinFixture(t *testing.T) *checkinFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMockEnrollmentStore()

	level := &domain.Level{Name: "Advanced", IsActive: true}
	if err := store.CreateLevel(ctx, level); err != nil {
		t.Fatalf("Failed to seed level: %v", err)
	}

	slot := &domain.AppointmentSlot{
		Date:      time.Now().AddDate(0, 0, 1),
		StartTime: "10:00",
		EndTime:   "11:00",
		LevelID:   level.LevelID,
		Gender:    domain.GenderMale,
		Capacity:  50,
	}
	if err := store.Create(ctx, slot); err != nil {
		t.Fatalf("Failed to seed slot: %v", err)
	}

	return &checkinFixture{
		store:   store,
		service: NewCheckInService(store.Students()),
		slotID:  slot.SlotID,
		levelID: level.LevelID,
	}
}

func (f *checkinFixture) addStudent(t *testing.T, n int) *domain.Student {
	t.Helper()

	student, err := f.store.Reserve(context.Background(), f.slotID, &domain.Student{
		Surname:          fmt.Sprintf("Okafor%03d", n),
		Firstname:        "Chidi",
		Whatsapp:         fmt.Sprintf("+2347%09d", n),
		Email:            fmt.Sprintf("chidi%03d@example.com", n),
		Gender:           domain.GenderMale,
		Address:          "4 Harmony Close",
		LevelID:          f.levelID,
		RegistrationCode: fmt.Sprintf("AI-TESTC%03d", n),
	})
	if err != nil {
		t.Fatalf("Failed to seed student: %v", err)
	}
	return student
}

func TestCheckInService_CheckIn(t *testing.T) {
	f := newCheckinFixture(t)
	seeded := f.addStudent(t, 1)

	student, err := f.service.CheckIn(context.Background(), seeded.StudentID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if student.Status != domain.StatusCheckedIn {
		t.Errorf("Expected status %s, got %s", domain.StatusCheckedIn, student.Status)
	}
}

func TestCheckInService_CheckIn_SecondScanIsReported(t *testing.T) {
	f := newCheckinFixture(t)
	seeded := f.addStudent(t, 1)
	ctx := context.Background()

	if _, err := f.service.CheckIn(ctx, seeded.StudentID); err != nil {
		t.Fatalf("Expected first check-in to succeed, got %v", err)
	}

	student, err := f.service.CheckIn(ctx, seeded.StudentID)
	if !errors.Is(err, domain.ErrAlreadyCheckedIn) {
		t.Fatalf("Expected ErrAlreadyCheckedIn on second scan, got %v", err)
	}
	if student == nil {
		t.Fatal("Expected the existing record alongside the conflict")
	}
	if student.Status != domain.StatusCheckedIn {
		t.Errorf("Expected record to stay %s, got %s", domain.StatusCheckedIn, student.Status)
	}

	// The stored record is unchanged by the failed second scan.
	stored, err := f.store.GetStudentByID(ctx, seeded.StudentID)
	if err != nil {
		t.Fatalf("Failed to reload student: %v", err)
	}
	if stored.Status != domain.StatusCheckedIn {
		t.Errorf("Expected stored status %s, got %s", domain.StatusCheckedIn, stored.Status)
	}
}

func TestCheckInService_CheckIn_UnknownStudent(t *testing.T) {
	f := newCheckinFixture(t)

	_, err := f.service.CheckIn(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("Expected ErrStudentNotFound, got %v", err)
	}
}

func TestCheckInService_FindStudent(t *testing.T) {
	f := newCheckinFixture(t)
	seeded := f.addStudent(t, 1)
	ctx := context.Background()

	byCode, err := f.service.FindStudent(ctx, seeded.RegistrationCode)
	if err != nil {
		t.Fatalf("Expected code lookup to succeed, got %v", err)
	}
	if byCode.StudentID != seeded.StudentID {
		t.Errorf("Expected student %s by code, got %s", seeded.StudentID, byCode.StudentID)
	}

	byContact, err := f.service.FindStudent(ctx, seeded.Whatsapp)
	if err != nil {
		t.Fatalf("Expected contact lookup to succeed, got %v", err)
	}
	if byContact.StudentID != seeded.StudentID {
		t.Errorf("Expected student %s by contact, got %s", seeded.StudentID, byContact.StudentID)
	}

	byName, err := f.service.FindStudent(ctx, "okafor")
	if err != nil {
		t.Fatalf("Expected name lookup to succeed, got %v", err)
	}
	if byName.StudentID != seeded.StudentID {
		t.Errorf("Expected student %s by name fragment, got %s", seeded.StudentID, byName.StudentID)
	}
}

func TestCheckInService_FindStudent_NoMatch(t *testing.T) {
	f := newCheckinFixture(t)
	f.addStudent(t, 1)

	_, err := f.service.FindStudent(context.Background(), "nobody-by-this-name")
	if !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("Expected ErrStudentNotFound, got %v", err)
	}
}

func TestCheckInService_ListStudents_ClampsPagination(t *testing.T) {
	f := newCheckinFixture(t)
	for i := 0; i < 25; i++ {
		f.addStudent(t, i)
	}

	students, total, err := f.service.ListStudents(context.Background(), -5, -3, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total != 25 {
		t.Errorf("Expected total 25, got %d", total)
	}
	if len(students) != 20 {
		t.Errorf("Expected the default page size of 20, got %d", len(students))
	}
}
