package repository

import (
	"context"
	"errors"
	"strings"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentRepository implements StudentRepository using GORM
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new GORM student repository
func NewStudentRepository(db *gorm.DB) infrastructure.StudentRepository {
	return &StudentRepository{
		db: db,
	}
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.WithContext(ctx).
		Preload("Level").
		Preload("Slot").
		First(&student, "student_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// Find matches the front-desk query against registration code, WhatsApp
// contact or a name fragment, in that order of precision
func (r *StudentRepository) Find(ctx context.Context, query string) (*domain.Student, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var student domain.Student
	err := r.db.WithContext(ctx).
		Preload("Level").
		Preload("Slot").
		Where("registration_code = ? OR whatsapp = ?", strings.ToUpper(query), query).
		First(&student).Error
	if err == nil {
		return &student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pattern := "%" + strings.ToLower(query) + "%"
	err = r.db.WithContext(ctx).
		Preload("Level").
		Preload("Slot").
		Where("LOWER(surname) LIKE ? OR LOWER(firstname) LIKE ? OR LOWER(othername) LIKE ?",
			pattern, pattern, pattern).
		Order("created_at ASC").
		First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// CheckIn transitions a student from booked to checked-in. The UPDATE
// carries the status predicate, so when several desks submit the same
// student at once exactly one row update wins and the rest observe
// ErrAlreadyCheckedIn.
func (r *StudentRepository) CheckIn(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Student{}).
		Where("student_id = ? AND status = ?", id, domain.StatusBooked).
		Update("status", domain.StatusCheckedIn)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		student, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if student == nil {
			return nil, domain.ErrStudentNotFound
		}
		return student, domain.ErrAlreadyCheckedIn
	}

	return r.GetByID(ctx, id)
}

// ListBySlot retrieves the registrations attached to one slot
func (r *StudentRepository) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Student, error) {
	var students []*domain.Student
	err := r.db.WithContext(ctx).
		Preload("Level").
		Where("appointment_slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

// List retrieves students with pagination and an optional search filter
func (r *StudentRepository) List(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error) {
	var students []*domain.Student
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Student{})
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(surname) LIKE ? OR LOWER(firstname) LIKE ? OR registration_code = ? OR whatsapp = ?",
			pattern, pattern, strings.ToUpper(search), search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Level").
		Preload("Slot").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// CountBySlot counts the registrations attached to one slot
func (r *StudentRepository) CountBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Student{}).
		Where("appointment_slot_id = ?", slotID).
		Count(&count).Error
	return count, err
}
