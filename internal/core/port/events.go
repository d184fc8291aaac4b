package port

import (
	"context"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishInterventionCreated(ctx context.Context, event domain.InterventionCreatedEvent) error
	PublishInterventionAssigned(ctx context.Context, event domain.InterventionAssignedEvent) error
	PublishEstablishmentSwitched(ctx context.Context, event domain.EstablishmentSwitchedEvent) error
	PublishSyncCompleted(ctx context.Context, event domain.SyncCompletedEvent) error
}
