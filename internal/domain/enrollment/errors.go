package enrollment

import "errors"

var (
	// ErrSlotFull is the expected contention outcome when every seat in
	// the slot is taken. It is cheap and side-effect free.
	ErrSlotFull = errors.New("appointment slot is full")

	// ErrSlotNotFound means the referenced slot does not exist, usually
	// because a stale client kept an id the admin layer removed.
	ErrSlotNotFound = errors.New("appointment slot not found")

	// ErrStudentNotFound means no registration matches the given id.
	ErrStudentNotFound = errors.New("student registration not found")

	// ErrAlreadyCheckedIn is the benign outcome of a double scan; the
	// first check-in won and nothing changed.
	ErrAlreadyCheckedIn = errors.New("student already checked in")

	// ErrStorageConflict is a transient serialization or deadlock
	// failure; the reservation transaction retries a bounded number of
	// times before surfacing it.
	ErrStorageConflict = errors.New("storage conflict")

	// ErrRegistrationClosed means the admin has closed registration
	// globally; availability queries return nothing while it is set.
	ErrRegistrationClosed = errors.New("registration is closed")

	// ErrCapacityBelowBooked rejects administrative slot edits that
	// would shrink capacity under the seats already claimed.
	ErrCapacityBelowBooked = errors.New("capacity cannot be reduced below booked count")

	// ErrSlotHasBookings rejects deleting a slot that students already
	// reserved into.
	ErrSlotHasBookings = errors.New("slot has existing bookings")

	// ErrLevelNotFound means the referenced level does not exist.
	ErrLevelNotFound = errors.New("level not found")

	// ErrSlotMismatch rejects a reservation whose level or gender does
	// not match the chosen slot. A registration always carries the same
	// level and gender as its slot.
	ErrSlotMismatch = errors.New("level or gender does not match the slot")

	// ErrDuplicateCode is mapped from the unique constraint on
	// registration codes; the reservation retries with a fresh code.
	ErrDuplicateCode = errors.New("registration code already exists")
)
