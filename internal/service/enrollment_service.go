package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"
	serviceInterfaces "campus-intake/internal/interfaces/service"
	"campus-intake/pkg/logger"
	"campus-intake/pkg/regcode"
	"campus-intake/pkg/validator"
)

const (
	idempotencyTTL  = 24 * time.Hour
	availabilityTTL = 30 * time.Second
)

// ErrIdempotencyMismatch is returned when an idempotency key is reused
// with a different request payload.
var ErrIdempotencyMismatch = errors.New("idempotency key reused with a different request")

// enrollmentService implements the EnrollmentService interface
type enrollmentService struct {
	slotRepo        infrastructure.SlotRepository
	levelRepo       infrastructure.LevelRepository
	settingsRepo    infrastructure.SettingsRepository
	idempotencyRepo infrastructure.IdempotencyRepository
	cache           infrastructure.CacheService
	queue           infrastructure.QueueService
	codes           *regcode.Generator
	maxRetries      int
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	slotRepo infrastructure.SlotRepository,
	levelRepo infrastructure.LevelRepository,
	settingsRepo infrastructure.SettingsRepository,
	idempotencyRepo infrastructure.IdempotencyRepository,
	cache infrastructure.CacheService,
	queue infrastructure.QueueService,
	codes *regcode.Generator,
	maxRetries int,
) serviceInterfaces.EnrollmentService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &enrollmentService{
		slotRepo:        slotRepo,
		levelRepo:       levelRepo,
		settingsRepo:    settingsRepo,
		idempotencyRepo: idempotencyRepo,
		cache:           cache,
		queue:           queue,
		codes:           codes,
		maxRetries:      maxRetries,
	}
}

// Reserve validates the request, then claims one unit of the slot's
// capacity and persists the registration atomically. Validation runs
// before any storage access, so a malformed request never consumes
// capacity or a registration code.
func (s *enrollmentService) Reserve(ctx context.Context, req *serviceInterfaces.ReserveRequest) (*domain.Student, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	if replay, done, err := s.checkIdempotency(ctx, req); done {
		return replay, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		logger.Error("Failed to load settings: %v", err)
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.RegistrationOpen {
		return nil, domain.ErrRegistrationClosed
	}

	level, err := s.levelRepo.GetByID(ctx, req.LevelID)
	if err != nil {
		logger.Error("Failed to load level %s: %v", req.LevelID, err)
		return nil, fmt.Errorf("failed to load level: %w", err)
	}
	if level == nil {
		return nil, domain.ErrLevelNotFound
	}

	// Fail fast on an inconsistent pairing before any capacity is
	// touched. The reservation transaction re-checks under its row
	// lock, so a slot edit racing this read still cannot produce a
	// mismatched registration.
	slot, err := s.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		logger.Error("Failed to load slot %s: %v", req.SlotID, err)
		return nil, fmt.Errorf("failed to load slot: %w", err)
	}
	if slot == nil {
		return nil, domain.ErrSlotNotFound
	}
	if slot.LevelID != req.LevelID || slot.Gender != req.Gender {
		return nil, domain.ErrSlotMismatch
	}

	student, err := s.reserveWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info("Reserved slot %s for %s with code %s",
		student.AppointmentSlotID, student.FullName(), student.RegistrationCode)

	s.storeIdempotency(ctx, req, student)
	s.enqueueConfirmation(ctx, student)

	if err := s.cache.InvalidateAvailability(ctx, student.LevelID, student.Gender, student.IntakeDate); err != nil {
		logger.Warn("Failed to invalidate availability cache: %v", err)
	}

	return student, nil
}

// reserveWithRetry drives the atomic claim, retrying only transient
// failures: a registration code collision gets a fresh code, a storage
// conflict gets another attempt. SlotFull and SlotNotFound are final.
func (s *enrollmentService) reserveWithRetry(ctx context.Context, req *serviceInterfaces.ReserveRequest) (*domain.Student, error) {
	var lastErr error

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate registration code: %w", err)
		}

		student := &domain.Student{
			Surname:          req.Surname,
			Firstname:        req.Firstname,
			Othername:        req.Othername,
			Whatsapp:         req.Whatsapp,
			Email:            req.Email,
			Gender:           req.Gender,
			Address:          req.Address,
			LevelID:          req.LevelID,
			RegistrationCode: code,
		}

		persisted, err := s.slotRepo.Reserve(ctx, req.SlotID, student)
		if err == nil {
			return persisted, nil
		}

		if errors.Is(err, domain.ErrDuplicateCode) || errors.Is(err, domain.ErrStorageConflict) {
			logger.Warn("Reserve attempt %d for slot %s failed: %v", attempt+1, req.SlotID, err)
			lastErr = err
			continue
		}

		return nil, err
	}

	return nil, fmt.Errorf("reservation failed after %d attempts: %w", s.maxRetries, lastErr)
}

// checkIdempotency replays a previously processed request. The second
// return value reports whether the caller should return immediately.
func (s *enrollmentService) checkIdempotency(ctx context.Context, req *serviceInterfaces.ReserveRequest) (*domain.Student, bool, error) {
	if req.IdempotencyKey == "" || s.idempotencyRepo == nil {
		return nil, false, nil
	}

	existing, err := s.idempotencyRepo.GetByKey(ctx, req.IdempotencyKey)
	if err != nil {
		logger.Warn("Failed to look up idempotency key: %v", err)
		return nil, false, nil
	}
	if existing == nil || existing.IsExpired() {
		return nil, false, nil
	}

	if existing.RequestHash != hashRequest(req) {
		return nil, true, ErrIdempotencyMismatch
	}

	var student domain.Student
	if err := json.Unmarshal([]byte(existing.ResponseData), &student); err != nil {
		logger.Warn("Failed to decode stored idempotency response: %v", err)
		return nil, false, nil
	}

	logger.Info("Replaying reservation for idempotency key %s", req.IdempotencyKey)
	return &student, true, nil
}

func (s *enrollmentService) storeIdempotency(ctx context.Context, req *serviceInterfaces.ReserveRequest, student *domain.Student) {
	if req.IdempotencyKey == "" || s.idempotencyRepo == nil {
		return
	}

	data, err := json.Marshal(student)
	if err != nil {
		logger.Warn("Failed to encode idempotency response: %v", err)
		return
	}

	now := time.Now()
	key := &domain.IdempotencyKey{
		Key:          req.IdempotencyKey,
		RequestHash:  hashRequest(req),
		ResponseData: string(data),
		StatusCode:   201,
		ProcessedAt:  now,
		ExpiresAt:    now.Add(idempotencyTTL),
	}

	if err := s.idempotencyRepo.Create(ctx, key); err != nil {
		logger.Warn("Failed to store idempotency key: %v", err)
	}
}

// enqueueConfirmation hands the confirmation notification to the queue.
// Delivery is fire-and-forget; a full queue never fails the reservation.
func (s *enrollmentService) enqueueConfirmation(ctx context.Context, student *domain.Student) {
	if s.queue == nil {
		return
	}

	job := infrastructure.NotificationJob{
		StudentID:        student.StudentID,
		RegistrationCode: student.RegistrationCode,
		FullName:         student.FullName(),
		Email:            student.Email,
		Whatsapp:         student.Whatsapp,
		IntakeDate:       student.IntakeDate,
		StartTime:        student.Slot.StartTime,
		Template:         infrastructure.TemplateConfirmation,
		Timestamp:        time.Now(),
	}

	if err := s.queue.EnqueueNotification(ctx, job); err != nil {
		logger.Warn("Failed to enqueue confirmation for %s: %v", student.RegistrationCode, err)
	}
}

func hashRequest(req *serviceInterfaces.ReserveRequest) string {
	payload, _ := json.Marshal(struct {
		SlotID  string             `json:"slot_id"`
		Profile domain.ProfileForm `json:"profile"`
	}{
		SlotID:  req.SlotID.String(),
		Profile: req.ProfileForm,
	})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
