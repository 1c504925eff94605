package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
)

// MockEnrollmentStore is an in-memory implementation of the slot,
// student, level, settings and idempotency repositories for
// testing/demo purposes. Reserve and CheckIn take the store mutex for
// their whole critical section, so the store gives the same
// serialization guarantees as the database-backed repositories.
type MockEnrollmentStore struct {
	slots    map[uuid.UUID]*domain.AppointmentSlot
	students map[uuid.UUID]*domain.Student
	levels   map[uuid.UUID]*domain.Level
	settings *domain.AppSettings
	idemKeys map[string]*domain.IdempotencyKey
	mutex    sync.RWMutex

	// ReserveErrs injects one error per queued entry before the real
	// reserve logic runs; used to exercise conflict retry paths.
	ReserveErrs []error
}

// NewMockEnrollmentStore creates an empty in-memory store
func NewMockEnrollmentStore() *MockEnrollmentStore {
	return &MockEnrollmentStore{
		slots:    make(map[uuid.UUID]*domain.AppointmentSlot),
		students: make(map[uuid.UUID]*domain.Student),
		levels:   make(map[uuid.UUID]*domain.Level),
		settings: &domain.AppSettings{ID: 1, RegistrationOpen: true},
		idemKeys: make(map[string]*domain.IdempotencyKey),
	}
}

var _ infrastructure.SlotRepository = (*MockEnrollmentStore)(nil)

// Slots returns the store's SlotRepository view
func (s *MockEnrollmentStore) Slots() infrastructure.SlotRepository { return s }

// Students returns the store's StudentRepository view
func (s *MockEnrollmentStore) Students() infrastructure.StudentRepository {
	return &mockStudentView{store: s}
}

// Levels returns the store's LevelRepository view
func (s *MockEnrollmentStore) Levels() infrastructure.LevelRepository {
	return &mockLevelView{store: s}
}

// Settings returns the store's SettingsRepository view
func (s *MockEnrollmentStore) Settings() infrastructure.SettingsRepository {
	return &mockSettingsView{store: s}
}

// Idempotency returns the store's IdempotencyRepository view
func (s *MockEnrollmentStore) Idempotency() infrastructure.IdempotencyRepository {
	return &mockIdempotencyView{store: s}
}

// Create creates a new appointment slot
func (s *MockEnrollmentStore) Create(ctx context.Context, slot *domain.AppointmentSlot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if slot.SlotID == uuid.Nil {
		slot.SlotID = uuid.New()
	}
	copied := *slot
	s.slots[slot.SlotID] = &copied
	return nil
}

// GetByID retrieves a slot by ID
func (s *MockEnrollmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentSlot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	slot, exists := s.slots[id]
	if !exists {
		return nil, nil
	}
	copied := *slot
	return &copied, nil
}

// Update saves administrative edits to a slot
func (s *MockEnrollmentStore) Update(ctx context.Context, slot *domain.AppointmentSlot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.slots[slot.SlotID]
	if !exists {
		return domain.ErrSlotNotFound
	}
	existing.Date = slot.Date
	existing.StartTime = slot.StartTime
	existing.EndTime = slot.EndTime
	existing.LevelID = slot.LevelID
	existing.Gender = slot.Gender
	existing.Capacity = slot.Capacity
	existing.UpdatedAt = time.Now()
	return nil
}

// Delete removes a slot
func (s *MockEnrollmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.slots[id]; !exists {
		return domain.ErrSlotNotFound
	}
	delete(s.slots, id)
	return nil
}

// List retrieves slots with pagination in schedule order
func (s *MockEnrollmentStore) List(ctx context.Context, limit, offset int) ([]*domain.AppointmentSlot, int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	all := s.sortedSlots(func(*domain.AppointmentSlot) bool { return true })
	total := int64(len(all))

	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ListByDateLevelGender retrieves the slots of one day for a level and gender
func (s *MockEnrollmentStore) ListByDateLevelGender(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	day := date.Format("2006-01-02")
	return s.sortedSlots(func(slot *domain.AppointmentSlot) bool {
		return slot.DateString() == day && slot.LevelID == levelID && slot.Gender == gender
	}), nil
}

// ListAvailableDates retrieves the distinct dates that still have room
func (s *MockEnrollmentStore) ListAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	seen := make(map[string]time.Time)
	for _, slot := range s.slots {
		if slot.LevelID == levelID && slot.Gender == gender && slot.HasRoom() {
			seen[slot.DateString()] = slot.Date
		}
	}

	var dates []time.Time
	for _, date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Reserve claims one unit of capacity and records the student while
// holding the store mutex, mirroring the row-lock transaction of the
// database-backed repository
func (s *MockEnrollmentStore) Reserve(ctx context.Context, slotID uuid.UUID, student *domain.Student) (*domain.Student, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.ReserveErrs) > 0 {
		err := s.ReserveErrs[0]
		s.ReserveErrs = s.ReserveErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	slot, exists := s.slots[slotID]
	if !exists {
		return nil, domain.ErrSlotNotFound
	}
	if slot.LevelID != student.LevelID || slot.Gender != student.Gender {
		return nil, domain.ErrSlotMismatch
	}
	if !slot.HasRoom() {
		return nil, domain.ErrSlotFull
	}

	for _, existing := range s.students {
		if existing.RegistrationCode == student.RegistrationCode {
			return nil, domain.ErrDuplicateCode
		}
	}

	slot.Booked++

	copied := *student
	if copied.StudentID == uuid.Nil {
		copied.StudentID = uuid.New()
	}
	copied.AppointmentSlotID = slot.SlotID
	copied.IntakeDate = slot.Date
	copied.Status = domain.StatusBooked
	copied.CreatedAt = time.Now()
	copied.Slot = *slot
	s.students[copied.StudentID] = &copied

	result := copied
	return &result, nil
}

// GetStudentByID retrieves a student by ID
func (s *MockEnrollmentStore) GetStudentByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	student, exists := s.students[id]
	if !exists {
		return nil, nil
	}
	copied := *student
	return &copied, nil
}

// Find matches on registration code, contact or name fragment
func (s *MockEnrollmentStore) Find(ctx context.Context, query string) (*domain.Student, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	upper := strings.ToUpper(query)
	for _, student := range s.students {
		if student.RegistrationCode == upper || student.Whatsapp == query {
			copied := *student
			return &copied, nil
		}
	}

	lower := strings.ToLower(query)
	for _, student := range s.students {
		if strings.Contains(strings.ToLower(student.Surname), lower) ||
			strings.Contains(strings.ToLower(student.Firstname), lower) ||
			strings.Contains(strings.ToLower(student.Othername), lower) {
			copied := *student
			return &copied, nil
		}
	}
	return nil, nil
}

// CheckIn performs the conditional booked -> checked-in transition
func (s *MockEnrollmentStore) CheckIn(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	student, exists := s.students[id]
	if !exists {
		return nil, domain.ErrStudentNotFound
	}
	if student.Status != domain.StatusBooked {
		copied := *student
		return &copied, domain.ErrAlreadyCheckedIn
	}

	student.Status = domain.StatusCheckedIn
	student.UpdatedAt = time.Now()
	copied := *student
	return &copied, nil
}

// ListBySlot retrieves the registrations attached to one slot
func (s *MockEnrollmentStore) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Student, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var students []*domain.Student
	for _, student := range s.students {
		if student.AppointmentSlotID == slotID {
			copied := *student
			students = append(students, &copied)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].CreatedAt.Before(students[j].CreatedAt)
	})
	return students, nil
}

// ListStudents retrieves students with pagination and an optional filter
func (s *MockEnrollmentStore) ListStudents(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	lower := strings.ToLower(strings.TrimSpace(search))
	var matched []*domain.Student
	for _, student := range s.students {
		if lower != "" &&
			!strings.Contains(strings.ToLower(student.Surname), lower) &&
			!strings.Contains(strings.ToLower(student.Firstname), lower) &&
			!strings.EqualFold(student.RegistrationCode, search) &&
			student.Whatsapp != search {
			continue
		}
		copied := *student
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// CountBySlot counts the registrations attached to one slot
func (s *MockEnrollmentStore) CountBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var count int64
	for _, student := range s.students {
		if student.AppointmentSlotID == slotID {
			count++
		}
	}
	return count, nil
}

// CreateLevel adds a level
func (s *MockEnrollmentStore) CreateLevel(ctx context.Context, level *domain.Level) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if level.LevelID == uuid.Nil {
		level.LevelID = uuid.New()
	}
	copied := *level
	s.levels[level.LevelID] = &copied
	return nil
}

// GetLevelByID retrieves a level by ID
func (s *MockEnrollmentStore) GetLevelByID(ctx context.Context, id uuid.UUID) (*domain.Level, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	level, exists := s.levels[id]
	if !exists {
		return nil, nil
	}
	copied := *level
	return &copied, nil
}

// ListLevels retrieves levels in display order
func (s *MockEnrollmentStore) ListLevels(ctx context.Context, includeInactive bool) ([]*domain.Level, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var levels []*domain.Level
	for _, level := range s.levels {
		if !includeInactive && !level.IsActive {
			continue
		}
		copied := *level
		levels = append(levels, &copied)
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].SortOrder != levels[j].SortOrder {
			return levels[i].SortOrder < levels[j].SortOrder
		}
		return levels[i].Name < levels[j].Name
	})
	return levels, nil
}

// UpdateLevel saves edits to a level
func (s *MockEnrollmentStore) UpdateLevel(ctx context.Context, level *domain.Level) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.levels[level.LevelID]
	if !exists {
		return domain.ErrLevelNotFound
	}
	existing.Name = level.Name
	existing.IsActive = level.IsActive
	existing.SortOrder = level.SortOrder
	existing.UpdatedAt = time.Now()
	return nil
}

// DeleteLevel removes a level
func (s *MockEnrollmentStore) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.levels[id]; !exists {
		return domain.ErrLevelNotFound
	}
	delete(s.levels, id)
	return nil
}

// GetSettings retrieves the singleton settings row
func (s *MockEnrollmentStore) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	copied := *s.settings
	return &copied, nil
}

// UpdateSettings overwrites the singleton settings row
func (s *MockEnrollmentStore) UpdateSettings(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.settings.RegistrationOpen = settings.RegistrationOpen
	s.settings.MaxDailyCapacity = settings.MaxDailyCapacity
	s.settings.UpdatedAt = time.Now()
	copied := *s.settings
	return &copied, nil
}

// CreateKey stores an idempotency key
func (s *MockEnrollmentStore) CreateKey(ctx context.Context, key *domain.IdempotencyKey) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	copied := *key
	s.idemKeys[key.Key] = &copied
	return nil
}

// GetByKey retrieves an idempotency key
func (s *MockEnrollmentStore) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	idemKey, exists := s.idemKeys[key]
	if !exists {
		return nil, nil
	}
	copied := *idemKey
	return &copied, nil
}

// DeleteKey removes an idempotency key
func (s *MockEnrollmentStore) DeleteKey(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.idemKeys, key)
	return nil
}

// DeleteExpired removes expired idempotency keys
func (s *MockEnrollmentStore) DeleteExpired(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for key, idemKey := range s.idemKeys {
		if now.After(idemKey.ExpiresAt) {
			delete(s.idemKeys, key)
		}
	}
	return nil
}

func (s *MockEnrollmentStore) sortedSlots(keep func(*domain.AppointmentSlot) bool) []*domain.AppointmentSlot {
	var slots []*domain.AppointmentSlot
	for _, slot := range s.slots {
		if keep(slot) {
			copied := *slot
			slots = append(slots, &copied)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots
}

type mockStudentView struct {
	store *MockEnrollmentStore
}

func (v *mockStudentView) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return v.store.GetStudentByID(ctx, id)
}

func (v *mockStudentView) Find(ctx context.Context, query string) (*domain.Student, error) {
	return v.store.Find(ctx, query)
}

func (v *mockStudentView) CheckIn(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return v.store.CheckIn(ctx, id)
}

func (v *mockStudentView) ListBySlot(ctx context.Context, slotID uuid.UUID) ([]*domain.Student, error) {
	return v.store.ListBySlot(ctx, slotID)
}

func (v *mockStudentView) List(ctx context.Context, limit, offset int, search string) ([]*domain.Student, int64, error) {
	return v.store.ListStudents(ctx, limit, offset, search)
}

func (v *mockStudentView) CountBySlot(ctx context.Context, slotID uuid.UUID) (int64, error) {
	return v.store.CountBySlot(ctx, slotID)
}

type mockLevelView struct {
	store *MockEnrollmentStore
}

func (v *mockLevelView) Create(ctx context.Context, level *domain.Level) error {
	return v.store.CreateLevel(ctx, level)
}

func (v *mockLevelView) GetByID(ctx context.Context, id uuid.UUID) (*domain.Level, error) {
	return v.store.GetLevelByID(ctx, id)
}

func (v *mockLevelView) List(ctx context.Context, includeInactive bool) ([]*domain.Level, error) {
	return v.store.ListLevels(ctx, includeInactive)
}

func (v *mockLevelView) Update(ctx context.Context, level *domain.Level) error {
	return v.store.UpdateLevel(ctx, level)
}

func (v *mockLevelView) Delete(ctx context.Context, id uuid.UUID) error {
	return v.store.DeleteLevel(ctx, id)
}

type mockSettingsView struct {
	store *MockEnrollmentStore
}

func (v *mockSettingsView) Get(ctx context.Context) (*domain.AppSettings, error) {
	return v.store.GetSettings(ctx)
}

func (v *mockSettingsView) Update(ctx context.Context, settings *domain.AppSettings) (*domain.AppSettings, error) {
	return v.store.UpdateSettings(ctx, settings)
}

type mockIdempotencyView struct {
	store *MockEnrollmentStore
}

func (v *mockIdempotencyView) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	return v.store.CreateKey(ctx, key)
}

func (v *mockIdempotencyView) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	return v.store.GetByKey(ctx, key)
}

func (v *mockIdempotencyView) Delete(ctx context.Context, key string) error {
	return v.store.DeleteKey(ctx, key)
}

func (v *mockIdempotencyView) DeleteExpired(ctx context.Context) error {
	return v.store.DeleteExpired(ctx)
}
