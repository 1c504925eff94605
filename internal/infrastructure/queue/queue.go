package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	interfaces "campus-intake/internal/interfaces/infrastructure"
	"campus-intake/pkg/logger"
)

// Queue is an in-process notification queue backed by a buffered
// channel and a worker pool.
type Queue struct {
	notifications chan interfaces.NotificationJob

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.RWMutex

	sender interfaces.NotificationSender
}

func NewInMemoryQueue(bufferSize, workers int, sender interfaces.NotificationSender) interfaces.QueueService {
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		notifications: make(chan interfaces.NotificationJob, bufferSize),
		workers:       workers,
		ctx:           ctx,
		cancel:        cancel,
		sender:        sender,
	}
}

func (q *Queue) StartWorkers() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return
	}

	if q.sender == nil {
		logger.Warn("Notification sender not set, workers cannot process jobs")
		return
	}

	logger.Info("Starting %d notification workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.notificationWorker(i)
	}

	q.started = true
}

func (q *Queue) StopWorkers() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return
	}

	logger.Info("Stopping notification workers...")
	q.cancel()
	q.wg.Wait()
	q.started = false
	logger.Info("Notification workers stopped")
}

func (q *Queue) EnqueueNotification(ctx context.Context, job interfaces.NotificationJob) error {
	select {
	case q.notifications <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("notification queue is full")
	}
}

func (q *Queue) DequeueNotification(ctx context.Context) (*interfaces.NotificationJob, error) {
	select {
	case job := <-q.notifications:
		return &job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) notificationWorker(workerID int) {
	defer q.wg.Done()

	logger.Info("Notification worker %d started", workerID)

	for {
		select {
		case <-q.ctx.Done():
			logger.Info("Notification worker %d stopped", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(q.ctx, 5*time.Second)
			job, err := q.DequeueNotification(ctx)
			cancel()

			if err != nil {
				if err == context.DeadlineExceeded {
					continue
				}
				continue
			}

			if job != nil {
				q.processNotificationJob(workerID, job)
			}
		}
	}
}

// processNotificationJob delivers one notification. Failed sends are
// logged and dropped; the registration itself is already durable.
func (q *Queue) processNotificationJob(workerID int, job *interfaces.NotificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := q.sender.Send(ctx, *job); err != nil {
		logger.Error("Worker %d failed to send %s notification for %s: %v",
			workerID, job.Template, job.RegistrationCode, err)
	} else {
		logger.Info("Worker %d sent %s notification for %s",
			workerID, job.Template, job.RegistrationCode)
	}
}

var _ interfaces.QueueService = (*Queue)(nil)
