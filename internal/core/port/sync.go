package port

import (
	"context"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// Syncer reconciles the local pending state of a user with the remote store.
type Syncer interface {
	SyncAll(ctx context.Context, userID string) (domain.SyncReport, error)
}

// ToastSink accepts transient UI feedback. Delivery is best effort.
type ToastSink interface {
	Toast(ctx context.Context, toast domain.Toast)
}
