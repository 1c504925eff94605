package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	interfaces "campus-intake/internal/interfaces/infrastructure"

	"github.com/google/uuid"
)

// recordingSender captures every delivered job.
type recordingSender struct {
	mutex sync.Mutex
	jobs  []interfaces.NotificationJob
}

func (s *recordingSender) Send(ctx context.Context, job interfaces.NotificationJob) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *recordingSender) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.jobs)
}

func testJob(n int) interfaces.NotificationJob {
	return interfaces.NotificationJob{
		StudentID:        uuid.New(),
		RegistrationCode: fmt.Sprintf("AI-TESTQ%03d", n),
		FullName:         "Test Applicant",
		Email:            "applicant@example.com",
		Whatsapp:         "+2348000000000",
		IntakeDate:       time.Now().AddDate(0, 0, 1),
		StartTime:        "09:00",
		Template:         interfaces.TemplateConfirmation,
		Timestamp:        time.Now(),
	}
}

func TestInMemoryQueue_DeliversToSender(t *testing.T) {
	sender := &recordingSender{}
	q := NewInMemoryQueue(10, 2, sender)
	q.StartWorkers()
	defer q.StopWorkers()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := q.EnqueueNotification(ctx, testJob(i)); err != nil {
			t.Fatalf("Expected enqueue to succeed, got %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for sender.count() < 5 {
		select {
		case <-deadline:
			t.Fatalf("Expected 5 deliveries, got %d", sender.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestInMemoryQueue_FullBufferNeverBlocks(t *testing.T) {
	// No workers are started, so the buffer fills and stays full.
	sender := &recordingSender{}
	q := NewInMemoryQueue(2, 1, sender)

	ctx := context.Background()
	if err := q.EnqueueNotification(ctx, testJob(0)); err != nil {
		t.Fatalf("Expected enqueue to succeed, got %v", err)
	}
	if err := q.EnqueueNotification(ctx, testJob(1)); err != nil {
		t.Fatalf("Expected enqueue to succeed, got %v", err)
	}

	if err := q.EnqueueNotification(ctx, testJob(2)); err == nil {
		t.Fatal("Expected an error when the buffer is full, got nil")
	}
}

func TestInMemoryQueue_StopWorkersDrains(t *testing.T) {
	sender := &recordingSender{}
	q := NewInMemoryQueue(10, 1, sender)
	q.StartWorkers()

	if err := q.EnqueueNotification(context.Background(), testJob(0)); err != nil {
		t.Fatalf("Expected enqueue to succeed, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for sender.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("Expected the job to be delivered before shutdown")
		case <-time.After(10 * time.Millisecond):
		}
	}

	q.StopWorkers()

	// Enqueue after shutdown must not panic; the error depends on timing
	// and is not asserted.
	_ = q.EnqueueNotification(context.Background(), testJob(1))
}
