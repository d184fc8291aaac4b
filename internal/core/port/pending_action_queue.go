package port

import (
	"context"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// PendingActionQueue stores offline mutations per user in FIFO order.
// Replay is peek-then-ack: an action stays queued until Ack confirms it was settled.
type PendingActionQueue interface {
	Enqueue(ctx context.Context, action domain.PendingAction) error
	Peek(ctx context.Context, userID string) ([]domain.PendingAction, error)
	Ack(ctx context.Context, userID string, n int) error
	Len(ctx context.Context, userID string) (int64, error)
}
