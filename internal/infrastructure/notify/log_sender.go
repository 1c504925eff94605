package notify

import (
	"context"
	"fmt"

	interfaces "campus-intake/internal/interfaces/infrastructure"
	"campus-intake/pkg/logger"
)

// LogSender writes notifications to the application log. It stands in
// for a WhatsApp or email gateway in environments without one
// configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, job interfaces.NotificationJob) error {
	logger.WithFields(map[string]interface{}{
		"template":          string(job.Template),
		"registration_code": job.RegistrationCode,
		"whatsapp":          job.Whatsapp,
		"email":             job.Email,
	}).Infof("notification: %s", renderSummary(job))
	return nil
}

func renderSummary(job interfaces.NotificationJob) string {
	day := job.IntakeDate.Format("Monday, 2 January 2006")

	switch job.Template {
	case interfaces.TemplateConfirmation:
		return fmt.Sprintf("%s, your appointment is booked for %s at %s. Your registration code is %s.",
			job.FullName, day, job.StartTime, job.RegistrationCode)
	case interfaces.TemplateReminder24h:
		return fmt.Sprintf("%s, reminder: your appointment is tomorrow, %s at %s. Code: %s.",
			job.FullName, day, job.StartTime, job.RegistrationCode)
	case interfaces.TemplateReminderDayOf:
		return fmt.Sprintf("%s, your appointment is today at %s. Code: %s.",
			job.FullName, job.StartTime, job.RegistrationCode)
	default:
		return fmt.Sprintf("%s: appointment %s at %s, code %s",
			job.FullName, day, job.StartTime, job.RegistrationCode)
	}
}

var _ interfaces.NotificationSender = (*LogSender)(nil)
