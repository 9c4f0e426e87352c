// Package notify schedules daily study reminders. The device embedding
// owns the actual delivery channel; this package defines the contract and
// a logging implementation used until a platform scheduler is plugged in.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wordgym/wordgym-api/internal/platform/logger"
)

// Reminder describes a recurring daily reminder.
type Reminder struct {
	// Hour and Minute are the local wall-clock time the reminder fires,
	// every day, until cancelled.
	Hour   int
	Minute int

	// Title and Body are the notification content.
	Title string
	Body  string
}

// Validate checks that the reminder fires at a real wall-clock time.
func (r *Reminder) Validate() error {
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("reminder hour must be 0-23, got %d", r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("reminder minute must be 0-59, got %d", r.Minute)
	}
	return nil
}

// Scheduler registers and cancels daily reminders.
type Scheduler interface {
	// ScheduleDaily registers a recurring reminder and returns an
	// identifier for later cancellation.
	ScheduleDaily(ctx context.Context, reminder Reminder) (string, error)

	// Cancel removes a previously scheduled reminder. Cancelling an
	// unknown ID is a no-op.
	Cancel(ctx context.Context, id string) error
}

// LogScheduler is a Scheduler that only records requests in the log. It
// stands in on platforms without a notification service.
type LogScheduler struct {
	logger *slog.Logger
}

var _ Scheduler = (*LogScheduler)(nil)

// NewLogScheduler creates a LogScheduler.
func NewLogScheduler(log *slog.Logger) *LogScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &LogScheduler{logger: log.With(slog.String("component", "notify"))}
}

// ScheduleDaily implements Scheduler.ScheduleDaily.
func (s *LogScheduler) ScheduleDaily(ctx context.Context, reminder Reminder) (string, error) {
	if err := reminder.Validate(); err != nil {
		return "", err
	}

	id := uuid.New().String()
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.InfoContext(ctx, "scheduled daily reminder",
		slog.String("reminder_id", id),
		slog.Int("hour", reminder.Hour),
		slog.Int("minute", reminder.Minute))
	return id, nil
}

// Cancel implements Scheduler.Cancel.
func (s *LogScheduler) Cancel(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.InfoContext(ctx, "cancelled reminder", slog.String("reminder_id", id))
	return nil
}
