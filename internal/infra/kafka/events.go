package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types published by the API. Topics are the event types under the configured prefix.
const (
	EventInterventionCreated   = "intervention.created"
	EventInterventionAssigned  = "intervention.assigned"
	EventEstablishmentSwitched = "establishment.switched"
	EventSyncCompleted         = "sync.completed"
	EventSyncFailed            = "sync.failed"
	EventToast                 = "toast"
)

// EventPublisher implements port.EventPublisher and port.ToastSink using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, key string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	bytes, err := json.Marshal(eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    key,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	return p.producer.Send(ctx, p.producer.TopicName(eventType), key, bytes)
}

// PublishInterventionCreated publishes intervention.created events keyed by establishment.
func (p *EventPublisher) PublishInterventionCreated(ctx context.Context, event domain.InterventionCreatedEvent) error {
	payload := struct {
		InterventionID  string    `json:"intervention_id"`
		EstablishmentID string    `json:"establishment_id"`
		CreatedBy       string    `json:"created_by"`
		Priority        string    `json:"priority"`
		Location        string    `json:"location"`
		CreatedAt       time.Time `json:"created_at"`
	}{
		InterventionID:  event.InterventionID,
		EstablishmentID: event.EstablishmentID,
		CreatedBy:       event.CreatedBy,
		Priority:        string(event.Priority),
		Location:        event.Location,
		CreatedAt:       event.CreatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventInterventionCreated, event.EstablishmentID, event.CreatedAt, payload)
}

// PublishInterventionAssigned publishes intervention.assigned events. The push pipeline fans them out to assignees.
func (p *EventPublisher) PublishInterventionAssigned(ctx context.Context, event domain.InterventionAssignedEvent) error {
	payload := struct {
		InterventionID  string    `json:"intervention_id"`
		EstablishmentID string    `json:"establishment_id"`
		AssigneeIDs     []string  `json:"assignee_ids"`
		AssignedBy      string    `json:"assigned_by"`
		Priority        string    `json:"priority"`
		MissionSummary  string    `json:"mission_summary"`
		AssignedAt      time.Time `json:"assigned_at"`
	}{
		InterventionID:  event.InterventionID,
		EstablishmentID: event.EstablishmentID,
		AssigneeIDs:     event.AssigneeIDs,
		AssignedBy:      event.AssignedBy,
		Priority:        string(event.Priority),
		MissionSummary:  event.MissionSummary,
		AssignedAt:      event.AssignedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventInterventionAssigned, event.EstablishmentID, event.AssignedAt, payload)
}

// PublishEstablishmentSwitched publishes establishment.switched events.
func (p *EventPublisher) PublishEstablishmentSwitched(ctx context.Context, event domain.EstablishmentSwitchedEvent) error {
	payload := struct {
		UserID          string    `json:"user_id"`
		EstablishmentID string    `json:"establishment_id"`
		PreviousID      *string   `json:"previous_id,omitempty"`
		SwitchedAt      time.Time `json:"switched_at"`
	}{
		UserID:          event.UserID,
		EstablishmentID: event.EstablishmentID,
		PreviousID:      event.PreviousID,
		SwitchedAt:      event.SwitchedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventEstablishmentSwitched, event.UserID, event.SwitchedAt, payload)
}

// PublishSyncCompleted publishes sync.completed, or sync.failed when the event carries an error.
func (p *EventPublisher) PublishSyncCompleted(ctx context.Context, event domain.SyncCompletedEvent) error {
	eventType := EventSyncCompleted
	if event.Error != "" {
		eventType = EventSyncFailed
	}

	payload := struct {
		UserID      string    `json:"user_id"`
		Applied     int       `json:"applied"`
		Dropped     int       `json:"dropped"`
		Error       string    `json:"error,omitempty"`
		CompletedAt time.Time `json:"completed_at"`
	}{
		UserID:      event.UserID,
		Applied:     event.Applied,
		Dropped:     event.Dropped,
		Error:       event.Error,
		CompletedAt: event.CompletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, eventType, event.UserID, event.CompletedAt, payload)
}

// Toast forwards transient UI feedback to the user's devices. Failures are logged and swallowed.
func (p *EventPublisher) Toast(ctx context.Context, toast domain.Toast) {
	payload := struct {
		Type    string `json:"type"`
		Title   string `json:"title"`
		Message string `json:"message,omitempty"`
	}{
		Type:    string(toast.Type),
		Title:   toast.Title,
		Message: toast.Message,
	}

	if err := p.publish(ctx, "", EventToast, toast.UserID, time.Time{}, payload); err != nil {
		p.logger.Warn("publish toast", zap.String("user_id", toast.UserID), zap.Error(err))
	}
}

var (
	_ port.EventPublisher = (*EventPublisher)(nil)
	_ port.ToastSink      = (*EventPublisher)(nil)
)
