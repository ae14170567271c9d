package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/models"
)

type ReminderRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewReminderRepository(db *sqlx.DB, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{db: db, logger: logger}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, description, notes, kind, start_date, end_date, increment,
			enabled, last_date, auto_enter, advance_notice, webhook_url, metadata, tags,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	now := time.Now()
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	reminder.CreatedAt = now
	if reminder.UpdatedAt == nil {
		reminder.UpdatedAt = timePtr(now)
	}

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.Description,
		reminder.Notes,
		reminder.Kind,
		reminder.StartDate,
		reminder.EndDate,
		reminder.Increment,
		reminder.Enabled,
		reminder.LastDate,
		reminder.AutoEnter,
		reminder.AdvanceNotice,
		reminder.WebhookURL,
		reminder.Metadata,
		reminder.Tags,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.GetContext(ctx, &reminder, `SELECT * FROM reminders WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	query := `
		UPDATE reminders
		SET description = $2, notes = $3, kind = $4, start_date = $5, end_date = $6,
			increment = $7, enabled = $8, auto_enter = $9, advance_notice = $10,
			webhook_url = $11, metadata = $12, tags = $13, updated_at = $14
		WHERE id = $1`

	reminder.UpdatedAt = timePtr(time.Now())
	result, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.Description,
		reminder.Notes,
		reminder.Kind,
		reminder.StartDate,
		reminder.EndDate,
		reminder.Increment,
		reminder.Enabled,
		reminder.AutoEnter,
		reminder.AdvanceNotice,
		reminder.WebhookURL,
		reminder.Metadata,
		reminder.Tags,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return models.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return models.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) List(ctx context.Context) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.SelectContext(ctx, &reminders, `SELECT * FROM reminders ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// ListEnabled returns the reminders the sweeper considers for expansion.
func (r *ReminderRepository) ListEnabled(ctx context.Context) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.SelectContext(ctx, &reminders,
		`SELECT * FROM reminders WHERE enabled = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled reminders: %w", err)
	}
	return reminders, nil
}

func (r *ReminderRepository) ListByTags(ctx context.Context, tags []string) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	err := r.db.SelectContext(ctx, &reminders,
		`SELECT * FROM reminders WHERE tags && $1 ORDER BY created_at`, pq.Array(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders by tags: %w", err)
	}
	return reminders, nil
}

// RecordFiring marks an occurrence as consumed: it advances the reminder's
// last fired date and appends a row to the firing history, atomically. This
// is the only place last_date is ever written.
func (r *ReminderRepository) RecordFiring(ctx context.Context, firing *models.Firing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin firing transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE reminders SET last_date = $2, updated_at = $3 WHERE id = $1`,
		firing.ReminderID, firing.FiredOn, time.Now())
	if err != nil {
		return fmt.Errorf("failed to advance last fired date: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check firing update: %w", err)
	}
	if rows == 0 {
		return models.ErrReminderNotFound
	}

	firing.RecordedAt = time.Now()
	if firing.Status == "" {
		firing.Status = models.NoticeStatusDelivered
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO firings (reminder_id, fired_on, status, detail, recorded_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		firing.ReminderID, firing.FiredOn, firing.Status, firing.Detail, firing.RecordedAt,
	).Scan(&firing.ID)
	if err != nil {
		return fmt.Errorf("failed to record firing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit firing: %w", err)
	}

	r.logger.Debug("recorded firing",
		zap.String("reminder_id", firing.ReminderID.String()),
		zap.Time("fired_on", firing.FiredOn))
	return nil
}

// ListFirings returns the firing history of a reminder, newest first.
func (r *ReminderRepository) ListFirings(ctx context.Context, reminderID uuid.UUID, limit int) ([]models.Firing, error) {
	if limit <= 0 {
		limit = 50
	}
	var firings []models.Firing
	err := r.db.SelectContext(ctx, &firings,
		`SELECT * FROM firings WHERE reminder_id = $1 ORDER BY fired_on DESC, id DESC LIMIT $2`,
		reminderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list firings: %w", err)
	}
	return firings, nil
}
