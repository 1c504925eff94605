package repository

import (
	"context"
	"errors"
	"time"

	domain "campus-intake/internal/domain/enrollment"
	infrastructure "campus-intake/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

var _ infrastructure.IdempotencyRepository = (*IdempotencyRepository)(nil)

// IdempotencyRepository stores processed reservation requests in
// Postgres so replays survive a cache flush.
type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *IdempotencyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	var idempotencyKey domain.IdempotencyKey
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&idempotencyKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &idempotencyKey, nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&domain.IdempotencyKey{}).Error
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&domain.IdempotencyKey{}).Error
}
