package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, key string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published", append([]zap.Field{
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.Time("timestamp", at.UTC()),
	}, fields...)...)
}

// PublishInterventionCreated logs intervention.created events.
func (p *StubPublisher) PublishInterventionCreated(_ context.Context, event domain.InterventionCreatedEvent) error {
	p.logEvent(EventInterventionCreated, event.EstablishmentID, event.CreatedAt,
		zap.String("intervention_id", event.InterventionID),
		zap.String("priority", string(event.Priority)),
	)
	return nil
}

// PublishInterventionAssigned logs intervention.assigned events.
func (p *StubPublisher) PublishInterventionAssigned(_ context.Context, event domain.InterventionAssignedEvent) error {
	p.logEvent(EventInterventionAssigned, event.EstablishmentID, event.AssignedAt,
		zap.String("intervention_id", event.InterventionID),
		zap.Strings("assignee_ids", event.AssigneeIDs),
	)
	return nil
}

// PublishEstablishmentSwitched logs establishment.switched events.
func (p *StubPublisher) PublishEstablishmentSwitched(_ context.Context, event domain.EstablishmentSwitchedEvent) error {
	p.logEvent(EventEstablishmentSwitched, event.UserID, event.SwitchedAt,
		zap.String("establishment_id", event.EstablishmentID),
	)
	return nil
}

// PublishSyncCompleted logs sync events.
func (p *StubPublisher) PublishSyncCompleted(_ context.Context, event domain.SyncCompletedEvent) error {
	eventType := EventSyncCompleted
	if event.Error != "" {
		eventType = EventSyncFailed
	}
	p.logEvent(eventType, event.UserID, event.CompletedAt,
		zap.Int("applied", event.Applied),
		zap.Int("dropped", event.Dropped),
		zap.String("error", event.Error),
	)
	return nil
}

// Toast logs toasts.
func (p *StubPublisher) Toast(_ context.Context, toast domain.Toast) {
	p.logEvent(EventToast, toast.UserID, time.Time{},
		zap.String("type", string(toast.Type)),
		zap.String("title", toast.Title),
		zap.String("message", toast.Message),
	)
}

var (
	_ port.EventPublisher = (*StubPublisher)(nil)
	_ port.ToastSink      = (*StubPublisher)(nil)
)
