package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
)

const ackTimeout = 5 * time.Second

// Reconciler replays a user's offline pending actions against the store.
type Reconciler struct {
	queue         port.PendingActionQueue
	users         port.UserRepository
	interventions *InterventionService
	logger        *zap.Logger
}

// NewReconciler constructs the Syncer used by sync coordinators.
func NewReconciler(queue port.PendingActionQueue, users port.UserRepository, interventions *InterventionService, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{queue: queue, users: users, interventions: interventions, logger: logger}
}

// SyncAll replays the pending queue in recording order. Each action is acknowledged once
// it is settled: applied, or dropped because it can never succeed. A store failure or an
// expired ctx stops the replay and leaves that action and the rest queued for the next sync.
func (r *Reconciler) SyncAll(ctx context.Context, userID string) (domain.SyncReport, error) {
	var report domain.SyncReport

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("load user: %w", err)
	}

	actions, err := r.queue.Peek(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("read pending actions: %w", err)
	}

	for _, action := range actions {
		applyErr := r.interventions.Apply(ctx, user, action)
		switch {
		case applyErr == nil:
			report.Applied++
		case isPermanent(applyErr):
			report.Dropped++
			r.logger.Warn("drop pending action",
				zap.String("user_id", userID),
				zap.String("action_id", action.ID),
				zap.String("kind", string(action.Kind)),
				zap.Error(applyErr),
			)
		default:
			return report, fmt.Errorf("apply pending action %s: %w", action.ID, applyErr)
		}

		if err := r.ack(ctx, userID); err != nil {
			return report, fmt.Errorf("acknowledge pending action %s: %w", action.ID, err)
		}
	}

	return report, nil
}

// ack outlives a cancelled sync so an action that reached the store is not replayed.
func (r *Reconciler) ack(ctx context.Context, userID string) error {
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()
	return r.queue.Ack(ackCtx, userID, 1)
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrInterventionNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidAction)
}

var _ port.Syncer = (*Reconciler)(nil)
