package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type NoticeStatus string

const (
	NoticeStatusPending   NoticeStatus = "pending"
	NoticeStatusDelivered NoticeStatus = "delivered"
	NoticeStatusFailed    NoticeStatus = "failed"
)

// Notice is an upcoming occurrence queued for delivery. It carries enough of
// the reminder's fields for the dispatcher to deliver without a database
// round-trip.
type Notice struct {
	NoticeID    uuid.UUID      `json:"notice_id"`
	ReminderID  uuid.UUID      `json:"reminder_id"`
	DueOn       time.Time      `json:"due_on"`
	Description string         `json:"description"`
	Notes       string         `json:"notes"`
	AutoEnter   bool           `json:"auto_enter"`
	WebhookURL  string         `json:"webhook_url"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	Tags        pq.StringArray `json:"tags"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
}

// Firing is the append-only record of a consumed occurrence.
type Firing struct {
	ID         int          `json:"id" db:"id"`
	ReminderID uuid.UUID    `json:"reminder_id" db:"reminder_id"`
	FiredOn    time.Time    `json:"fired_on" db:"fired_on"`
	Status     NoticeStatus `json:"status" db:"status"`
	Detail     string       `json:"detail" db:"detail"`
	RecordedAt time.Time    `json:"recorded_at" db:"recorded_at"`
}
