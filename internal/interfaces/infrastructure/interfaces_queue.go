package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TemplateKind selects the notification template.
type TemplateKind string

const (
	TemplateConfirmation  TemplateKind = "confirmation"
	TemplateReminder24h   TemplateKind = "reminder_24h"
	TemplateReminderDayOf TemplateKind = "reminder_day_of"
)

// NotificationJob carries everything a sender needs so workers never
// read the database. Delivery is fire-and-forget: a failed send is
// logged and dropped, never rolled back into the reservation.
type NotificationJob struct {
	StudentID        uuid.UUID    `json:"student_id"`
	RegistrationCode string       `json:"registration_code"`
	FullName         string       `json:"full_name"`
	Email            string       `json:"email"`
	Whatsapp         string       `json:"whatsapp"`
	IntakeDate       time.Time    `json:"intake_date"`
	StartTime        string       `json:"start_time"`
	Template         TemplateKind `json:"template"`
	Timestamp        time.Time    `json:"timestamp"`
	Attempts         int          `json:"attempts"`
}

// NotificationSender delivers one notification.
type NotificationSender interface {
	Send(ctx context.Context, job NotificationJob) error
}

// QueueService buffers notification jobs and drives a worker pool that
// hands them to the configured sender.
type QueueService interface {
	EnqueueNotification(ctx context.Context, job NotificationJob) error
	DequeueNotification(ctx context.Context) (*NotificationJob, error)
	StartWorkers()
	StopWorkers()
}
