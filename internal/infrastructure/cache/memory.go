package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	interfaces "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func marshal(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}

// MemoryCache is an in-process implementation of CacheService for
// testing/demo purposes. It reuses the Redis key scheme and stores the
// same JSON payloads, just in a map.
type MemoryCache struct {
	entries map[string]memoryEntry
	mutex   sync.RWMutex
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryCache) get(key string) (string, bool) {
	m.mutex.RLock()
	entry, exists := m.entries[key]
	m.mutex.RUnlock()
	if !exists || entry.expired() {
		return "", false
	}
	return entry.value, true
}

func (m *MemoryCache) set(key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mutex.Lock()
	m.entries[key] = entry
	m.mutex.Unlock()
}

func (m *MemoryCache) GetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error) {
	val, ok := m.get(datesKey(levelID, gender))
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	var dates []time.Time
	if err := unmarshal(val, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

func (m *MemoryCache) SetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender, dates []time.Time, ttl time.Duration) error {
	data, err := marshal(dates)
	if err != nil {
		return err
	}
	m.set(datesKey(levelID, gender), data, ttl)
	return nil
}

func (m *MemoryCache) GetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error) {
	val, ok := m.get(slotsKey(date, levelID, gender))
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	var slots []*domain.AppointmentSlot
	if err := unmarshal(val, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (m *MemoryCache) SetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender, slots []*domain.AppointmentSlot, ttl time.Duration) error {
	data, err := marshal(slots)
	if err != nil {
		return err
	}
	m.set(slotsKey(date, levelID, gender), data, ttl)
	return nil
}

func (m *MemoryCache) InvalidateAvailability(ctx context.Context, levelID uuid.UUID, gender domain.Gender, date time.Time) error {
	m.mutex.Lock()
	delete(m.entries, datesKey(levelID, gender))
	delete(m.entries, slotsKey(date, levelID, gender))
	m.mutex.Unlock()
	return nil
}

func (m *MemoryCache) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	val, ok := m.get(settingsKey)
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	var settings domain.AppSettings
	if err := unmarshal(val, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (m *MemoryCache) SetSettings(ctx context.Context, settings *domain.AppSettings, ttl time.Duration) error {
	data, err := marshal(settings)
	if err != nil {
		return err
	}
	m.set(settingsKey, data, ttl)
	return nil
}

func (m *MemoryCache) InvalidateSettings(ctx context.Context) error {
	m.mutex.Lock()
	delete(m.entries, settingsKey)
	m.mutex.Unlock()
	return nil
}

func (m *MemoryCache) GetWizard(ctx context.Context, token string) (*domain.Wizard, error) {
	val, ok := m.get(wizardKey(token))
	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	var wizard domain.Wizard
	if err := unmarshal(val, &wizard); err != nil {
		return nil, err
	}
	return &wizard, nil
}

func (m *MemoryCache) SetWizard(ctx context.Context, token string, wizard *domain.Wizard, ttl time.Duration) error {
	data, err := marshal(wizard)
	if err != nil {
		return err
	}
	m.set(wizardKey(token), data, ttl)
	return nil
}

func (m *MemoryCache) DeleteWizard(ctx context.Context, token string) error {
	m.mutex.Lock()
	delete(m.entries, wizardKey(token))
	m.mutex.Unlock()
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	val, ok := m.get(key)
	if !ok {
		return "", interfaces.ErrCacheMiss
	}
	return val, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.set(key, value, ttl)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	delete(m.entries, key)
	m.mutex.Unlock()
	return nil
}

func (m *MemoryCache) Clear(ctx context.Context, pattern string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key := range m.entries {
		if matched, _ := path.Match(pattern, key); matched {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemoryCache) Health(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) Close() error {
	return nil
}

var _ interfaces.CacheService = (*MemoryCache)(nil)
