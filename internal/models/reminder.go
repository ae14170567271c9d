package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/ledgerkit/remindd/internal/recurrence"
)

// Reminder is the persisted recurring-reminder entity. The schedule fields
// (Kind, StartDate, EndDate, Increment, Enabled, LastDate) feed the
// recurrence engine; the rest describe what to do when an occurrence comes
// due. LastDate is only ever written by a consumer that acted on an
// occurrence, never by the engine.
type Reminder struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Description   string          `json:"description" db:"description"`
	Notes         string          `json:"notes" db:"notes"`
	Kind          recurrence.Kind `json:"kind" db:"kind"`
	StartDate     time.Time       `json:"start_date" db:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Increment     int             `json:"increment" db:"increment"`
	Enabled       bool            `json:"enabled" db:"enabled"`
	LastDate      *time.Time      `json:"last_date,omitempty" db:"last_date"`
	AutoEnter     bool            `json:"auto_enter" db:"auto_enter"`
	AdvanceNotice int             `json:"advance_notice" db:"advance_notice"`
	WebhookURL    string          `json:"webhook_url" db:"webhook_url"`
	Metadata      datatypes.JSON  `json:"metadata,omitempty" db:"metadata"`
	Tags          pq.StringArray  `json:"tags" db:"tags"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
}

// Rule returns the immutable schedule snapshot the recurrence engine
// operates on.
func (r *Reminder) Rule() recurrence.Rule {
	return recurrence.Rule{
		Kind:      r.Kind,
		Start:     r.StartDate,
		End:       r.EndDate,
		Increment: r.Increment,
		Enabled:   r.Enabled,
		LastFired: r.LastDate,
	}
}

// Validate rejects invalid reminder configuration before it is persisted.
func (r *Reminder) Validate() error {
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	if r.AdvanceNotice < 0 {
		return fmt.Errorf("advance notice must not be negative, got %d", r.AdvanceNotice)
	}
	return r.Rule().Validate()
}

type CreateReminderRequest struct {
	Description   string          `json:"description" binding:"required"`
	Notes         string          `json:"notes"`
	Kind          recurrence.Kind `json:"kind" binding:"required"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	Increment     int             `json:"increment"`
	Enabled       *bool           `json:"enabled,omitempty"`
	AutoEnter     bool            `json:"auto_enter"`
	AdvanceNotice int             `json:"advance_notice"`
	WebhookURL    string          `json:"webhook_url"`
	Metadata      datatypes.JSON  `json:"metadata,omitempty"`
	Tags          []string        `json:"tags"`
}

type UpdateReminderRequest struct {
	Description   *string          `json:"description,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Kind          *recurrence.Kind `json:"kind,omitempty"`
	StartDate     *time.Time       `json:"start_date,omitempty"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	Increment     *int             `json:"increment,omitempty"`
	Enabled       *bool            `json:"enabled,omitempty"`
	AutoEnter     *bool            `json:"auto_enter,omitempty"`
	AdvanceNotice *int             `json:"advance_notice,omitempty"`
	WebhookURL    *string          `json:"webhook_url,omitempty"`
	Metadata      datatypes.JSON   `json:"metadata,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
}

// FireReminderRequest records that a consumer acted on an occurrence.
// FiredOn defaults to the reminder's next occurrence when omitted.
type FireReminderRequest struct {
	FiredOn *time.Time `json:"fired_on,omitempty"`
}
