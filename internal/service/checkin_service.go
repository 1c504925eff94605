package service

import (
	"context"
	"errors"
	"fmt"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/logger"

	"github.com/google/uuid"
)

// checkinService implements the CheckInService interface
type checkinService struct {
	studentRepo infrastructure.StudentRepository
}

// NewCheckInService creates a new check-in service
func NewCheckInService(studentRepo infrastructure.StudentRepository) serviceInterfaces.CheckInService {
	return &checkinService{
		studentRepo: studentRepo,
	}
}

// CheckIn marks a booked student as arrived. The transition is
// conditional at the storage layer, so a double scan is reported as
// AlreadyCheckedIn with the record unchanged.
func (s *checkinService) CheckIn(ctx context.Context, studentID uuid.UUID) (*domain.Student, error) {
	student, err := s.studentRepo.CheckIn(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			logger.Info("Student %s already checked in", studentID)
			return student, err
		}
		if errors.Is(err, domain.ErrStudentNotFound) {
			return nil, err
		}
		logger.Error("Failed to check in student %s: %v", studentID, err)
		return nil, fmt.Errorf("failed to check in student: %w", err)
	}

	logger.Info("Checked in %s (%s)", student.FullName(), student.RegistrationCode)
	return student, nil
}

// FindStudent resolves a front-desk query to one registration
func (s *checkinService) FindStudent(ctx context.Context, query string) (*domain.Student, error) {
	student, err := s.studentRepo.Find(ctx, query)
	if err != nil {
		logger.Error("Failed to search students: %v", err)
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	if student == nil {
		return nil, domain.ErrStudentNotFound
	}
	return student, nil
}

// ListStudents retrieves registrations with pagination and an optional
// search filter
func (s *checkinService) ListStudents(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	students, total, err := s.studentRepo.List(ctx, limit, offset, search)
	if err != nil {
		logger.Error("Failed to list students: %v", err)
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return students, total, nil
}
