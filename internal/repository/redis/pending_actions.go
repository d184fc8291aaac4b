package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
)

const defaultPendingPrefix = "gestihotel:pending"

// PendingActionQueue keeps offline mutations in a per-user Redis list, oldest at the head.
type PendingActionQueue struct {
	client *red.Client
	prefix string
}

// NewPendingActionQueue constructs a Redis-backed pending action queue.
func NewPendingActionQueue(client *red.Client, keyPrefix string) *PendingActionQueue {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultPendingPrefix
	}
	return &PendingActionQueue{client: client, prefix: prefix}
}

// Enqueue appends an action to the tail of the user's queue.
func (q *PendingActionQueue) Enqueue(ctx context.Context, action domain.PendingAction) error {
	key := q.key(action.UserID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal pending action: %w", err)
	}

	if err := q.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("redis rpush pending action: %w", err)
	}
	return nil
}

// Peek returns every queued action in recording order and leaves the queue untouched.
// Entries that fail to decode are removed so they cannot block the head of the queue.
func (q *PendingActionQueue) Peek(ctx context.Context, userID string) ([]domain.PendingAction, error) {
	key := q.key(userID)
	if key == "" {
		return nil, fmt.Errorf("user id is required")
	}

	raw, err := q.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange pending actions: %w", err)
	}

	actions := make([]domain.PendingAction, 0, len(raw))
	for _, item := range raw {
		var action domain.PendingAction
		if err := json.Unmarshal([]byte(item), &action); err != nil {
			if err := q.client.LRem(ctx, key, 1, item).Err(); err != nil {
				return nil, fmt.Errorf("redis lrem malformed pending action: %w", err)
			}
			continue
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// Ack removes the n oldest actions. Enqueue only appends at the tail, so the head
// is exactly what the caller peeked.
func (q *PendingActionQueue) Ack(ctx context.Context, userID string, n int) error {
	key := q.key(userID)
	if key == "" {
		return fmt.Errorf("user id is required")
	}
	if n <= 0 {
		return nil
	}
	if err := q.client.LTrim(ctx, key, int64(n), -1).Err(); err != nil {
		return fmt.Errorf("redis ltrim pending actions: %w", err)
	}
	return nil
}

// Len reports the number of queued actions.
func (q *PendingActionQueue) Len(ctx context.Context, userID string) (int64, error) {
	key := q.key(userID)
	if key == "" {
		return 0, fmt.Errorf("user id is required")
	}
	n, err := q.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen pending actions: %w", err)
	}
	return n, nil
}

func (q *PendingActionQueue) key(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ""
	}
	return q.prefix + ":" + userID
}

var _ port.PendingActionQueue = (*PendingActionQueue)(nil)
