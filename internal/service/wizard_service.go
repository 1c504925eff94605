package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/logger"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a wizard token is unknown or the
// session expired.
var ErrSessionNotFound = errors.New("wizard session not found")

// wizardService implements the WizardService interface. Sessions live
// in the cache under a random token; durable storage is touched only
// when Confirm drives the reservation transaction.
type wizardService struct {
	enrollment serviceInterfaces.EnrollmentService
	slotRepo   infrastructure.SlotRepository
	cache      infrastructure.CacheService
	sessionTTL time.Duration
}

// NewWizardService creates a new wizard service
func NewWizardService(
	enrollment serviceInterfaces.EnrollmentService,
	slotRepo infrastructure.SlotRepository,
	cache infrastructure.CacheService,
	sessionTTL time.Duration,
) serviceInterfaces.WizardService {
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &wizardService{
		enrollment: enrollment,
		slotRepo:   slotRepo,
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

// Start opens a new session at the profile step
func (s *wizardService) Start(ctx context.Context) (string, *domain.Wizard, error) {
	token := uuid.NewString()
	wizard := domain.NewWizard()

	if err := s.cache.SetWizard(ctx, token, wizard, s.sessionTTL); err != nil {
		logger.Error("Failed to store wizard session: %v", err)
		return "", nil, fmt.Errorf("failed to store wizard session: %w", err)
	}

	logger.Debug("Started wizard session %s", token)
	return token, wizard, nil
}

// Get retrieves an in-progress session
func (s *wizardService) Get(ctx context.Context, token string) (*domain.Wizard, error) {
	return s.load(ctx, token)
}

// SubmitProfile validates the profile fields and advances to slot picking
func (s *wizardService) SubmitProfile(ctx context.Context, token string, form domain.ProfileForm) (*domain.Wizard, error) {
	wizard, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := wizard.SubmitProfile(form); err != nil {
		return nil, err
	}

	if err := s.save(ctx, token, wizard); err != nil {
		return nil, err
	}
	return wizard, nil
}

// SelectSlot records the chosen slot and advances to confirmation. The
// slot is re-read so an obviously stale choice fails here instead of at
// confirmation; room can still vanish between this check and Confirm.
func (s *wizardService) SelectSlot(ctx context.Context, token string, slotID uuid.UUID) (*domain.Wizard, error) {
	wizard, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		logger.Error("Failed to load slot %s: %v", slotID, err)
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, domain.ErrSlotNotFound
	}
	if slot.LevelID != wizard.Profile.LevelID || slot.Gender != wizard.Profile.Gender {
		return nil, domain.ErrSlotMismatch
	}
	if !slot.HasRoom() {
		return nil, domain.ErrSlotFull
	}

	if err := wizard.SelectSlot(slotID, slot.DateString()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, token, wizard); err != nil {
		return nil, err
	}
	return wizard, nil
}

// Back steps the wizard one state backwards, keeping collected fields
func (s *wizardService) Back(ctx context.Context, token string) (*domain.Wizard, error) {
	wizard, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := wizard.Back(); err != nil {
		return nil, err
	}

	if err := s.save(ctx, token, wizard); err != nil {
		return nil, err
	}
	return wizard, nil
}

// Confirm fires exactly one reserve call for the selected slot. When
// the slot can no longer serve the profile, because it filled up, was
// removed, or was edited into another section, the wizard drops back
// to slot picking with the failed slot excluded; the typed error is
// returned alongside the updated wizard so the client can re-render
// the picker.
func (s *wizardService) Confirm(ctx context.Context, token string) (*domain.Wizard, error) {
	wizard, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	if wizard.State != domain.StateConfirming {
		return nil, fmt.Errorf("%w: confirm from %s", domain.ErrInvalidTransition, wizard.State)
	}

	req := &serviceInterfaces.ReserveRequest{
		SlotID:      wizard.SelectedSlotID,
		ProfileForm: wizard.Profile,
		// One reservation per wizard session, even if the client
		// retries the confirm request.
		IdempotencyKey: "wizard:" + token,
	}

	student, err := s.enrollment.Reserve(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrSlotFull) || errors.Is(err, domain.ErrSlotNotFound) || errors.Is(err, domain.ErrSlotMismatch) {
			if ferr := wizard.ReservationFailed(); ferr != nil {
				return nil, ferr
			}
			if serr := s.save(ctx, token, wizard); serr != nil {
				return nil, serr
			}
			return wizard, err
		}
		return nil, err
	}

	if err := wizard.Complete(student); err != nil {
		return nil, err
	}
	if err := s.save(ctx, token, wizard); err != nil {
		return nil, err
	}

	logger.Info("Wizard session %s completed with code %s", token, student.RegistrationCode)
	return wizard, nil
}

// Abandon drops the session
func (s *wizardService) Abandon(ctx context.Context, token string) error {
	return s.cache.DeleteWizard(ctx, token)
}

func (s *wizardService) load(ctx context.Context, token string) (*domain.Wizard, error) {
	wizard, err := s.cache.GetWizard(ctx, token)
	if err != nil {
		if errors.Is(err, infrastructure.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		logger.Error("Failed to load wizard session: %v", err)
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}
	return wizard, nil
}

func (s *wizardService) save(ctx context.Context, token string, wizard *domain.Wizard) error {
	if err := s.cache.SetWizard(ctx, token, wizard, s.sessionTTL); err != nil {
		logger.Error("Failed to save wizard session: %v", err)
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}
