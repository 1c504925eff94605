package repository

import (
	"context"
	"errors"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRepository implements SlotRepository using GORM
type SlotRepository struct {
	db *gorm.DB
}

// NewSlotRepository creates a new GORM slot repository
func NewSlotRepository(db *gorm.DB) infrastructure.SlotRepository {
	return &SlotRepository{
		db: db,
	}
}

// Create creates a new appointment slot
func (r *SlotRepository) Create(ctx context.Context, slot *domain.AppointmentSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

// GetByID retrieves a slot by ID
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentSlot, error) {
	var slot domain.AppointmentSlot
	err := r.db.WithContext(ctx).Preload("Level").First(&slot, "slot_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// Update saves administrative edits to a slot
func (r *SlotRepository) Update(ctx context.Context, slot *domain.AppointmentSlot) error {
	return r.db.WithContext(ctx).Model(slot).
		Where("slot_id = ?", slot.SlotID).
		Updates(map[string]interface{}{
			"date":       slot.Date,
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
			"level_id":   slot.LevelID,
			"gender":     slot.Gender,
			"capacity":   slot.Capacity,
		}).Error
}

// Delete removes a slot
func (r *SlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.AppointmentSlot{}, "slot_id = ?", id).Error
}

// List retrieves slots with pagination, newest schedule first
func (r *SlotRepository) List(ctx context.Context, limit, offset int) ([]*domain.AppointmentSlot, int64, error) {
	var slots []*domain.AppointmentSlot
	var total int64

	if err := r.db.WithContext(ctx).Model(&domain.AppointmentSlot{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Level").
		Order("date ASC, start_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&slots).Error
	if err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// ListByDateLevelGender retrieves the slots of one calendar day for a
// level and gender, ordered by start time
func (r *SlotRepository) ListByDateLevelGender(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error) {
	var slots []*domain.AppointmentSlot
	err := r.db.WithContext(ctx).
		Where("date = ? AND level_id = ? AND gender = ?", date.Format("2006-01-02"), levelID, gender).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// ListAvailableDates retrieves the future dates that still have at least
// one slot with room for the given level and gender
func (r *SlotRepository) ListAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&domain.AppointmentSlot{}).
		Distinct("date").
		Where("level_id = ? AND gender = ? AND booked < capacity AND date >= ?",
			levelID, gender, time.Now().UTC().Format("2006-01-02")).
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// Reserve claims one unit of the slot's capacity and inserts the student
// registration in one database transaction. The slot row is locked with
// SELECT ... FOR UPDATE, so concurrent claims on the same slot serialize
// at the storage layer and the booked counter can never pass capacity.
// The registration's level and gender must match the slot's; the check
// runs under the same lock so a concurrent slot edit cannot slip a
// mismatched registration through.
func (r *SlotRepository) Reserve(ctx context.Context, slotID uuid.UUID, student *domain.Student) (*domain.Student, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot domain.AppointmentSlot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&slot, "slot_id = ?", slotID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSlotNotFound
			}
			return err
		}

		if slot.LevelID != student.LevelID || slot.Gender != student.Gender {
			return domain.ErrSlotMismatch
		}

		if !slot.HasRoom() {
			return domain.ErrSlotFull
		}

		if err := tx.Model(&domain.AppointmentSlot{}).
			Where("slot_id = ?", slot.SlotID).
			Update("booked", gorm.Expr("booked + 1")).Error; err != nil {
			return err
		}

		student.AppointmentSlotID = slot.SlotID
		student.IntakeDate = slot.Date
		student.Status = domain.StatusBooked

		if err := tx.Create(student).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateCode
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.reload(ctx, student.StudentID)
}

func (r *SlotRepository) reload(ctx context.Context, studentID uuid.UUID) (*domain.Student, error) {
	var persisted domain.Student
	err := r.db.WithContext(ctx).
		Preload("Level").
		Preload("Slot").
		First(&persisted, "student_id = ?", studentID).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}
