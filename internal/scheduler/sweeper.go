package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/models"
	"github.com/ledgerkit/remindd/internal/recurrence"
	"github.com/ledgerkit/remindd/internal/repository"
)

// Sweeper periodically expands enabled reminders into queued notices within
// a look-ahead window, and auto-enters reminders configured to fire without
// confirmation. The recurrence engine is pure; everything stateful lives
// here and in the repository.
type Sweeper struct {
	reminders *repository.ReminderRepository
	notifier  *Notifier
	lookAhead time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewSweeper(
	reminders *repository.ReminderRepository,
	notifier *Notifier,
	lookAhead time.Duration,
	schedule string,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		reminders: reminders,
		notifier:  notifier,
		lookAhead: lookAhead,
		schedule:  schedule,
		logger:    logger,
	}
}

// Sweep runs one expansion pass over all enabled reminders. A reminder with
// broken configuration is logged and skipped so the rest of the sweep still
// runs.
func (s *Sweeper) Sweep(ctx context.Context) error {
	today := recurrence.DateOf(time.Now().UTC())
	horizon := today.Add(s.lookAhead)

	reminders, err := s.reminders.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list enabled reminders: %w", err)
	}
	s.logger.Debug("sweeping reminders", zap.Int("count", len(reminders)))

	for _, reminder := range reminders {
		if reminder.AutoEnter {
			if err := s.autoEnter(ctx, reminder, today); err != nil {
				s.logger.Error("failed to auto-enter reminder",
					zap.String("reminder_id", reminder.ID.String()),
					zap.Error(err))
				continue
			}
		}

		if err := s.expand(ctx, reminder, horizon); err != nil {
			s.logger.Error("failed to expand reminder",
				zap.String("reminder_id", reminder.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// expand queues a notice for each occurrence inside the look-ahead window.
// Notices surface AdvanceNotice days ahead of the occurrence itself.
func (s *Sweeper) expand(ctx context.Context, reminder *models.Reminder, horizon time.Time) error {
	dates, err := recurrence.OccurrencesUntil(reminder.Rule(), horizon)
	if err != nil {
		return fmt.Errorf("invalid reminder configuration: %w", err)
	}

	for _, dueOn := range dates {
		notice := &models.Notice{
			NoticeID:    uuid.New(),
			ReminderID:  reminder.ID,
			DueOn:       dueOn,
			Description: reminder.Description,
			Notes:       reminder.Notes,
			AutoEnter:   reminder.AutoEnter,
			WebhookURL:  reminder.WebhookURL,
			Metadata:    reminder.Metadata,
			Tags:        reminder.Tags,
			EnqueuedAt:  time.Now().UTC(),
		}
		notifyAt := dueOn.AddDate(0, 0, -reminder.AdvanceNotice)
		if err := s.notifier.Enqueue(ctx, notice, notifyAt); err != nil {
			return err
		}
	}
	return nil
}

// autoEnter consumes every occurrence that is due today or overdue,
// recording each firing so last_date catches up one occurrence at a time.
// The in-memory reminder is advanced along the way so the expansion that
// follows does not re-queue occurrences that were just entered.
func (s *Sweeper) autoEnter(ctx context.Context, reminder *models.Reminder, today time.Time) error {
	for {
		next, ok, err := recurrence.NextOccurrence(reminder.Rule())
		if err != nil {
			return err
		}
		if !ok || next.After(today) {
			return nil
		}

		firing := &models.Firing{
			ReminderID: reminder.ID,
			FiredOn:    next,
			Status:     models.NoticeStatusDelivered,
			Detail:     "auto-entered",
		}
		if err := s.reminders.RecordFiring(ctx, firing); err != nil {
			return err
		}

		fired := next
		reminder.LastDate = &fired
	}
}

// Start registers the sweep on the cron schedule and begins running it.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("sweeper started", zap.String("schedule", s.schedule),
		zap.Duration("look_ahead", s.lookAhead))
	return nil
}

// Stop halts the cron loop, waiting for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.logger.Info("sweeper stopped")
}
