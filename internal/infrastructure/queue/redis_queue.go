package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"campus-intake/internal/config"
	interfaces "campus-intake/internal/interfaces/infrastructure"
	"campus-intake/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	NotificationQueueKey  = "queue:notifications"
	DefaultDequeueTimeout = 2 * time.Second
	DefaultJobTimeout     = 30 * time.Second
	WorkerSleepDuration   = 50 * time.Millisecond
)

// RedisQueue is a Redis-list notification queue. Jobs survive a process
// restart, unlike the in-memory channel variant.
type RedisQueue struct {
	client redis.UniversalClient

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	sender interfaces.NotificationSender
}

// NewRedisQueue creates a new Redis-based notification queue
func NewRedisQueue(cfg *config.CacheConfig, workers int, sender interfaces.NotificationSender) interfaces.QueueService {
	ctx, cancel := context.WithCancel(context.Background())

	var rdb redis.UniversalClient
	if cfg.Sentinel.Enabled {
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Sentinel.MasterName,
			SentinelAddrs:    cfg.Sentinel.SentinelAddrs,
			SentinelPassword: cfg.Sentinel.SentinelPassword,
			Password:         cfg.Password,
			DB:               cfg.DB,
			MaxRetries:       cfg.MaxRetries,
			PoolSize:         cfg.PoolSize,
			PoolTimeout:      time.Duration(cfg.PoolTimeout) * time.Second,
			IdleTimeout:      time.Duration(cfg.IdleTimeout) * time.Second,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:    cfg.Password,
			DB:          cfg.DB,
			MaxRetries:  cfg.MaxRetries,
			PoolSize:    cfg.PoolSize,
			PoolTimeout: time.Duration(cfg.PoolTimeout) * time.Second,
			IdleTimeout: time.Duration(cfg.IdleTimeout) * time.Second,
		})
	}

	return &RedisQueue{
		client:  rdb,
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		sender:  sender,
	}
}

func (rq *RedisQueue) StartWorkers() {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if rq.started {
		return
	}

	if rq.sender == nil {
		logger.Warn("Notification sender not set, workers cannot process jobs")
		return
	}

	logger.Info("Starting %d Redis notification workers", rq.workers)

	for i := 0; i < rq.workers; i++ {
		rq.wg.Add(1)
		go rq.notificationWorker(i)
	}

	rq.started = true
}

func (rq *RedisQueue) StopWorkers() {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if !rq.started {
		return
	}

	logger.Info("Stopping Redis notification workers...")
	rq.cancel()
	rq.wg.Wait()
	rq.started = false
	logger.Info("Redis notification workers stopped")
}

// EnqueueNotification pushes a notification job onto the Redis list
func (rq *RedisQueue) EnqueueNotification(ctx context.Context, job interfaces.NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	if err := rq.client.LPush(ctx, NotificationQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification job: %w", err)
	}

	logger.Debug("Enqueued %s notification for %s", job.Template, job.RegistrationCode)
	return nil
}

// DequeueNotification pops the oldest notification job, returning nil
// when the list is empty
func (rq *RedisQueue) DequeueNotification(ctx context.Context) (*interfaces.NotificationJob, error) {
	result, err := rq.client.BRPop(ctx, DefaultDequeueTimeout, NotificationQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		if err == context.DeadlineExceeded {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue notification job: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected Redis BRPOP result format")
	}

	var job interfaces.NotificationJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification job: %w", err)
	}

	return &job, nil
}

func (rq *RedisQueue) notificationWorker(workerID int) {
	defer rq.wg.Done()

	logger.Info("Redis notification worker %d started", workerID)

	for {
		select {
		case <-rq.ctx.Done():
			logger.Info("Redis notification worker %d stopped", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), DefaultDequeueTimeout)
			job, err := rq.DequeueNotification(ctx)
			cancel()

			if err != nil {
				logger.Error("Redis notification worker %d dequeue error: %v", workerID, err)
				time.Sleep(WorkerSleepDuration)
				continue
			}

			if job != nil {
				rq.processNotificationJob(workerID, job)
			} else {
				time.Sleep(WorkerSleepDuration)
			}
		}
	}
}

func (rq *RedisQueue) processNotificationJob(workerID int, job *interfaces.NotificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultJobTimeout)
	defer cancel()

	if err := rq.sender.Send(ctx, *job); err != nil {
		logger.Error("Redis worker %d failed to send %s notification for %s: %v",
			workerID, job.Template, job.RegistrationCode, err)
	} else {
		logger.Info("Redis worker %d sent %s notification for %s",
			workerID, job.Template, job.RegistrationCode)
	}
}

var _ interfaces.QueueService = (*RedisQueue)(nil)
