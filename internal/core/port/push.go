package port

import (
	"context"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// PushHandler consumes push-channel traffic on the bridge side.
type PushHandler interface {
	HandlePush(ctx context.Context, msg domain.PushMessage) error
	HandleNotificationEvent(ctx context.Context, event domain.NotificationEvent) error
	HandleInterventionAssigned(ctx context.Context, event domain.InterventionAssignedEvent) error
}
