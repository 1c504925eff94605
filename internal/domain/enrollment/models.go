package enrollment

import (
	"time"

	"github.com/google/uuid"
)

// Gender partitions slots and registrations into the two campus sections.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Level represents an academic level students are evaluated into
type Level struct {
	LevelID   uuid.UUID `json:"level_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name      string    `json:"name" gorm:"unique;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AppointmentSlot is a fixed time window on a calendar day, scoped to one
// level and one gender, with a maximum number of attendees. The booked
// counter is owned by the reservation transaction; administrative edits
// are the only other writer.
type AppointmentSlot struct {
	SlotID    uuid.UUID `json:"slot_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Date      time.Time `json:"date" gorm:"type:date;not null"`
	StartTime string    `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime   string    `json:"end_time" gorm:"type:varchar(5);not null"`
	LevelID   uuid.UUID `json:"level_id" gorm:"type:uuid;not null"`
	Gender    Gender    `json:"gender" gorm:"type:text;not null"`
	Capacity  int       `json:"capacity" gorm:"not null;check:capacity >= 0"`
	Booked    int       `json:"booked" gorm:"not null;default:0;check:booked >= 0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
	Level     Level     `json:"level,omitempty" gorm:"foreignKey:LevelID"`
}

// HasRoom reports whether the slot can accept another reservation.
func (s *AppointmentSlot) HasRoom() bool {
	return s.Booked < s.Capacity
}

// DateString returns the slot's calendar day in YYYY-MM-DD form.
func (s *AppointmentSlot) DateString() string {
	return s.Date.Format("2006-01-02")
}

// StudentStatus is the registration lifecycle state
type StudentStatus string

const (
	StatusBooked    StudentStatus = "booked"
	StatusCheckedIn StudentStatus = "checked-in"
)

// Student binds one applicant's profile to one appointment slot,
// consuming one unit of that slot's capacity. Created exactly once by the
// reservation transaction and otherwise immutable except for the single
// booked -> checked-in transition.
type Student struct {
	StudentID         uuid.UUID       `json:"student_id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Surname           string          `json:"surname" gorm:"not null"`
	Firstname         string          `json:"firstname" gorm:"not null"`
	Othername         string          `json:"othername"`
	Whatsapp          string          `json:"whatsapp" gorm:"not null"`
	Email             string          `json:"email" gorm:"not null"`
	Gender            Gender          `json:"gender" gorm:"type:text;not null"`
	Address           string          `json:"address" gorm:"not null"`
	LevelID           uuid.UUID       `json:"level_id" gorm:"type:uuid;not null"`
	IntakeDate        time.Time       `json:"intake_date" gorm:"type:date;not null"`
	RegistrationCode  string          `json:"registration_code" gorm:"unique;not null"`
	AppointmentSlotID uuid.UUID       `json:"appointment_slot_id" gorm:"type:uuid;not null"`
	Status            StudentStatus   `json:"status" gorm:"type:text;not null;default:booked"`
	CreatedAt         time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	Level             Level           `json:"level,omitempty" gorm:"foreignKey:LevelID"`
	Slot              AppointmentSlot `json:"slot,omitempty" gorm:"foreignKey:AppointmentSlotID"`
}

// FullName returns the name shown on front-desk screens.
func (s *Student) FullName() string {
	if s.Othername != "" {
		return s.Firstname + " " + s.Othername + " " + s.Surname
	}
	return s.Firstname + " " + s.Surname
}

// AppSettings is the singleton settings row read by the availability
// query. registration_open gates the whole public booking flow.
type AppSettings struct {
	ID               int       `json:"id" gorm:"primary_key"`
	RegistrationOpen bool      `json:"registration_open" gorm:"not null;default:true"`
	MaxDailyCapacity int       `json:"max_daily_capacity" gorm:"not null;default:0"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IdempotencyKey records a processed reservation request so a retried
// call with the same key and payload replays the stored response instead
// of claiming a second seat.
type IdempotencyKey struct {
	Key          string    `json:"key" gorm:"primary_key"`
	RequestHash  string    `json:"request_hash" gorm:"not null"`
	ResponseData string    `json:"response_data" gorm:"type:text"`
	StatusCode   int       `json:"status_code"`
	ProcessedAt  time.Time `json:"processed_at"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// IsExpired reports whether the key has outlived its replay window.
func (k *IdempotencyKey) IsExpired() bool {
	return time.Now().After(k.ExpiresAt)
}

// DaySlots annotates a calendar day with its open slot count; used by
// the availability date listing.
type DaySlots struct {
	Date      time.Time `json:"date"`
	OpenSlots int       `json:"open_slots"`
}
