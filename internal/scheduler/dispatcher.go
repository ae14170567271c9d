package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/models"
)

// HTTPClient is satisfied by http.Client; tests substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher drains the dispatch queue and delivers each notice to its
// reminder's webhook. Delivery failures never advance the reminder's fire
// history; confirming an occurrence stays the consumer's job.
type Dispatcher struct {
	notifier   *Notifier
	client     HTTPClient
	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewDispatcher(notifier *Notifier, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:   notifier,
		client:     &http.Client{Timeout: 10 * time.Second},
		interval:   interval,
		maxRetries: 3,
		retryDelay: 5 * time.Second,
		logger:     logger,
	}
}

// SetHTTPClient replaces the delivery client (used in tests).
func (d *Dispatcher) SetHTTPClient(client HTTPClient) {
	d.client = client
}

// Deliver sends one notice to its webhook with bounded retries. Notices
// without a webhook are logged locally and considered delivered.
func (d *Dispatcher) Deliver(ctx context.Context, notice *models.Notice) error {
	if notice.WebhookURL == "" {
		d.logger.Info("reminder due",
			zap.String("reminder_id", notice.ReminderID.String()),
			zap.String("description", notice.Description),
			zap.Time("due_on", notice.DueOn))
		return nil
	}

	payload := map[string]interface{}{
		"notice_id":   notice.NoticeID,
		"reminder_id": notice.ReminderID,
		"description": notice.Description,
		"notes":       notice.Notes,
		"due_on":      notice.DueOn.Format("2006-01-02"),
		"auto_enter":  notice.AutoEnter,
		"metadata":    notice.Metadata,
		"tags":        notice.Tags,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notice payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, notice.WebhookURL,
			bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("webhook request failed: %w", err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return lastErr
}

// Run moves due notices onto the dispatch queue and delivers them until the
// context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started", zap.Duration("interval", d.interval))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			moved, err := d.notifier.MoveDue(ctx, time.Now())
			if err != nil {
				d.logger.Error("failed to move due notices", zap.Error(err))
				continue
			}
			if moved > 0 {
				d.logger.Debug("moved due notices", zap.Int("count", moved))
			}

			for {
				notice, err := d.notifier.PopDispatch(ctx)
				if err != nil {
					d.logger.Error("failed to pop notice", zap.Error(err))
					break
				}
				if notice == nil {
					break
				}
				if err := d.Deliver(ctx, notice); err != nil {
					d.logger.Error("failed to deliver notice",
						zap.String("notice_id", notice.NoticeID.String()),
						zap.Error(err))
				}
			}
		}
	}
}
