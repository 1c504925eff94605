package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-intake/internal/config"
	domain "campus-intake/internal/domain/enrollment"
	interfaces "campus-intake/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{
		client: rdb,
	}
}

// NewRedisCacheWithConfig builds the cache from the cache section of
// the application config.
func NewRedisCacheWithConfig(cfg *config.CacheConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		PoolSize:    cfg.PoolSize,
		PoolTimeout: time.Duration(cfg.PoolTimeout) * time.Second,
		IdleTimeout: time.Duration(cfg.IdleTimeout) * time.Second,
	})

	return &RedisCache{
		client: rdb,
	}
}

// Client exposes the underlying connection so the queue and
// idempotency layers can share it.
func (r *RedisCache) Client() redis.UniversalClient {
	return r.client
}

func datesKey(levelID uuid.UUID, gender domain.Gender) string {
	return fmt.Sprintf("availability:dates:%s:%s", levelID.String(), gender)
}

func slotsKey(date time.Time, levelID uuid.UUID, gender domain.Gender) string {
	return fmt.Sprintf("availability:slots:%s:%s:%s", date.Format("2006-01-02"), levelID.String(), gender)
}

func wizardKey(token string) string {
	return "wizard:session:" + token
}

const settingsKey = "settings:app"

func (r *RedisCache) GetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender) ([]time.Time, error) {
	val, err := r.client.Get(ctx, datesKey(levelID, gender)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get available dates from cache: %w", err)
	}

	var dates []time.Time
	if err := json.Unmarshal([]byte(val), &dates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal available dates: %w", err)
	}

	return dates, nil
}

func (r *RedisCache) SetAvailableDates(ctx context.Context, levelID uuid.UUID, gender domain.Gender, dates []time.Time, ttl time.Duration) error {
	jsonData, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("failed to marshal available dates: %w", err)
	}

	if err := r.client.Set(ctx, datesKey(levelID, gender), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set available dates in cache: %w", err)
	}

	return nil
}

func (r *RedisCache) GetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender) ([]*domain.AppointmentSlot, error) {
	val, err := r.client.Get(ctx, slotsKey(date, levelID, gender)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get slots from cache: %w", err)
	}

	var slots []*domain.AppointmentSlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slots: %w", err)
	}

	return slots, nil
}

func (r *RedisCache) SetSlots(ctx context.Context, date time.Time, levelID uuid.UUID, gender domain.Gender, slots []*domain.AppointmentSlot, ttl time.Duration) error {
	jsonData, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	if err := r.client.Set(ctx, slotsKey(date, levelID, gender), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in cache: %w", err)
	}

	return nil
}

func (r *RedisCache) InvalidateAvailability(ctx context.Context, levelID uuid.UUID, gender domain.Gender, date time.Time) error {
	keys := []string{
		datesKey(levelID, gender),
		slotsKey(date, levelID, gender),
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability: %w", err)
	}

	return nil
}

func (r *RedisCache) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	val, err := r.client.Get(ctx, settingsKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get settings from cache: %w", err)
	}

	var settings domain.AppSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

func (r *RedisCache) SetSettings(ctx context.Context, settings *domain.AppSettings, ttl time.Duration) error {
	jsonData, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := r.client.Set(ctx, settingsKey, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set settings in cache: %w", err)
	}

	return nil
}

func (r *RedisCache) InvalidateSettings(ctx context.Context) error {
	if err := r.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings: %w", err)
	}

	return nil
}

func (r *RedisCache) GetWizard(ctx context.Context, token string) (*domain.Wizard, error) {
	val, err := r.client.Get(ctx, wizardKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get wizard session: %w", err)
	}

	var wizard domain.Wizard
	if err := json.Unmarshal([]byte(val), &wizard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard session: %w", err)
	}

	return &wizard, nil
}

func (r *RedisCache) SetWizard(ctx context.Context, token string, wizard *domain.Wizard, ttl time.Duration) error {
	jsonData, err := json.Marshal(wizard)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard session: %w", err)
	}

	if err := r.client.Set(ctx, wizardKey(token), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set wizard session: %w", err)
	}

	return nil
}

func (r *RedisCache) DeleteWizard(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, wizardKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}

	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", interfaces.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

func (r *RedisCache) Clear(ctx context.Context, pattern string) error {
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to get keys for pattern %s: %w", pattern, err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
	}

	return nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ interfaces.CacheService = (*RedisCache)(nil)
