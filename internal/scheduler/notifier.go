package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/models"
)

const (
	// Redis sorted set of upcoming notices, scored by notify time
	upcomingKey = "notices:upcoming"
	// Redis hash of notice payloads keyed by deterministic notice key
	noticeDataKey = "notices:data"
	// Redis list of notices ready for delivery
	dispatchQueueKey = "notices:dispatch"
)

// Notifier is the Redis-backed queue of upcoming notices. Keys are
// deterministic per (reminder, due date) so repeated sweeps are idempotent.
type Notifier struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewNotifier(redis *redis.Client, logger *zap.Logger) *Notifier {
	return &Notifier{redis: redis, logger: logger}
}

func noticeKey(reminderID uuid.UUID, dueOn time.Time) string {
	return fmt.Sprintf("notice:%s:%d", reminderID.String(), dueOn.Unix())
}

// Enqueue schedules a notice for delivery at notifyAt. Already-queued
// notices for the same reminder and due date are left untouched.
func (n *Notifier) Enqueue(ctx context.Context, notice *models.Notice, notifyAt time.Time) error {
	key := noticeKey(notice.ReminderID, notice.DueOn)

	exists, err := n.redis.HExists(ctx, noticeDataKey, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check notice existence: %w", err)
	}
	if exists {
		return nil
	}

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	if err := n.redis.ZAdd(ctx, upcomingKey, redis.Z{
		Score:  float64(notifyAt.Unix()),
		Member: key,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add notice to sorted set: %w", err)
	}
	if err := n.redis.HSet(ctx, noticeDataKey, key, data).Err(); err != nil {
		return fmt.Errorf("failed to add notice payload: %w", err)
	}
	return nil
}

// MoveDue shifts every notice whose notify time has passed onto the dispatch
// queue and returns how many were moved.
func (n *Notifier) MoveDue(ctx context.Context, asOf time.Time) (int, error) {
	keys, err := n.redis.ZRangeByScore(ctx, upcomingKey, &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", asOf.Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get due notices: %w", err)
	}

	count := 0
	for _, key := range keys {
		data, err := n.redis.HGet(ctx, noticeDataKey, key).Result()
		if err == redis.Nil {
			// Payload already gone; drop the orphaned score entry.
			_ = n.redis.ZRem(ctx, upcomingKey, key).Err()
			continue
		} else if err != nil {
			return count, fmt.Errorf("failed to get notice payload: %w", err)
		}

		if err := n.redis.RPush(ctx, dispatchQueueKey, data).Err(); err != nil {
			return count, fmt.Errorf("failed to push notice to dispatch queue: %w", err)
		}
		count++

		if err := n.redis.ZRem(ctx, upcomingKey, key).Err(); err != nil {
			return count, fmt.Errorf("failed to remove dispatched notice from sorted set: %w", err)
		}
		if err := n.redis.HDel(ctx, noticeDataKey, key).Err(); err != nil {
			return count, fmt.Errorf("failed to remove dispatched notice payload: %w", err)
		}
	}

	return count, nil
}

// PopDispatch takes the next notice off the dispatch queue, or returns nil
// when the queue is empty.
func (n *Notifier) PopDispatch(ctx context.Context) (*models.Notice, error) {
	data, err := n.redis.LPop(ctx, dispatchQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to pop from dispatch queue: %w", err)
	}
	var notice models.Notice
	if err := json.Unmarshal([]byte(data), &notice); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notice: %w", err)
	}
	return &notice, nil
}

// RemoveReminder drops every queued notice belonging to a reminder, used
// when a reminder is deleted or disabled.
func (n *Notifier) RemoveReminder(ctx context.Context, reminderID uuid.UUID) error {
	prefix := fmt.Sprintf("notice:%s:", reminderID.String())
	keys, err := n.redis.ZRange(ctx, upcomingKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to scan upcoming notices: %w", err)
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := n.redis.ZRem(ctx, upcomingKey, key).Err(); err != nil {
			return fmt.Errorf("failed to remove notice from sorted set: %w", err)
		}
		if err := n.redis.HDel(ctx, noticeDataKey, key).Err(); err != nil {
			return fmt.Errorf("failed to remove notice payload: %w", err)
		}
	}
	return nil
}
