package enrollment

import (
	"errors"
	"fmt"
	"time"

	"campus-intake/pkg/validator"

	"github.com/google/uuid"
)

// WizardState names a step of the enrollment flow.
type WizardState string

const (
	StateCollectingProfile WizardState = "collecting_profile"
	StatePickingSlot       WizardState = "picking_slot"
	StateConfirming        WizardState = "confirming"
	StateDone              WizardState = "done"
)

// ErrInvalidTransition is returned when a wizard mutation is called from
// the wrong state.
var ErrInvalidTransition = errors.New("invalid wizard transition")

// ProfileForm holds the applicant fields collected in the first step.
// All fields are validated locally before the wizard advances; no
// storage is touched until the final confirmation.
type ProfileForm struct {
	Surname   string    `json:"surname" validate:"required,min=1,max=100"`
	Firstname string    `json:"firstname" validate:"required,min=1,max=100"`
	Othername string    `json:"othername" validate:"omitempty,max=100"`
	Whatsapp  string    `json:"whatsapp" validate:"required,min=7,max=20"`
	Email     string    `json:"email" validate:"required,email"`
	Gender    Gender    `json:"gender" validate:"required,oneof=Male Female"`
	Address   string    `json:"address" validate:"required,min=1,max=300"`
	LevelID   uuid.UUID `json:"level_id" validate:"required"`
}

// Wizard is the enrollment flow state machine:
//
//	CollectingProfile -> PickingSlot -> Confirming -> Done
//
// with Back transitions from PickingSlot and Confirming. Each transition
// has exactly one mutation entry point, so "has this step committed" is
// always answerable from State alone. The wizard holds only in-progress
// form state; nothing is persisted until the reservation transaction
// commits during Confirm.
type Wizard struct {
	State           WizardState `json:"state"`
	Profile         ProfileForm `json:"profile"`
	SelectedSlotID  uuid.UUID   `json:"selected_slot_id"`
	SelectedDate    string      `json:"selected_date"`
	ExcludedSlotIDs []uuid.UUID `json:"excluded_slot_ids"`
	Registration    *Student    `json:"registration,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewWizard returns a wizard at the first step.
func NewWizard() *Wizard {
	now := time.Now()
	return &Wizard{
		State:     StateCollectingProfile,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SubmitProfile validates the profile fields and advances
// CollectingProfile -> PickingSlot. Validation failures are field-level
// and leave the wizard where it is.
func (w *Wizard) SubmitProfile(form ProfileForm) error {
	if w.State != StateCollectingProfile {
		return fmt.Errorf("%w: submit profile from %s", ErrInvalidTransition, w.State)
	}

	if err := validator.ValidateStruct(&form); err != nil {
		return err
	}

	w.Profile = form
	w.State = StatePickingSlot
	w.UpdatedAt = time.Now()
	return nil
}

// SelectSlot advances PickingSlot -> Confirming with the chosen slot.
// The caller is expected to offer only slots from a current availability
// listing; a stale choice surfaces later as SlotFull or SlotNotFound.
func (w *Wizard) SelectSlot(slotID uuid.UUID, date string) error {
	if w.State != StatePickingSlot {
		return fmt.Errorf("%w: select slot from %s", ErrInvalidTransition, w.State)
	}
	if slotID == uuid.Nil {
		return fmt.Errorf("%w: no slot selected", ErrInvalidTransition)
	}

	w.SelectedSlotID = slotID
	w.SelectedDate = date
	w.State = StateConfirming
	w.UpdatedAt = time.Now()
	return nil
}

// Back steps PickingSlot -> CollectingProfile or Confirming ->
// PickingSlot. Collected fields are kept so the user does not re-type.
func (w *Wizard) Back() error {
	switch w.State {
	case StatePickingSlot:
		w.State = StateCollectingProfile
	case StateConfirming:
		w.SelectedSlotID = uuid.Nil
		w.SelectedDate = ""
		w.State = StatePickingSlot
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, w.State)
	}
	w.UpdatedAt = time.Now()
	return nil
}

// Complete records the committed registration and advances Confirming ->
// Done. Only a successful reserve call may drive this transition.
func (w *Wizard) Complete(registration *Student) error {
	if w.State != StateConfirming {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, w.State)
	}
	if registration == nil {
		return fmt.Errorf("%w: complete without a registration", ErrInvalidTransition)
	}

	w.Registration = registration
	w.State = StateDone
	w.UpdatedAt = time.Now()
	return nil
}

// ReservationFailed returns the wizard to PickingSlot after the reserve
// call failed. The failing slot is excluded so the retry never silently
// targets it again; the caller must re-query availability.
func (w *Wizard) ReservationFailed() error {
	if w.State != StateConfirming {
		return fmt.Errorf("%w: reservation failure from %s", ErrInvalidTransition, w.State)
	}

	if w.SelectedSlotID != uuid.Nil {
		w.ExcludedSlotIDs = append(w.ExcludedSlotIDs, w.SelectedSlotID)
	}
	w.SelectedSlotID = uuid.Nil
	w.SelectedDate = ""
	w.State = StatePickingSlot
	w.UpdatedAt = time.Now()
	return nil
}

// IsExcluded reports whether a slot already failed for this wizard.
func (w *Wizard) IsExcluded(slotID uuid.UUID) bool {
	for _, id := range w.ExcludedSlotIDs {
		if id == slotID {
			return true
		}
	}
	return false
}
