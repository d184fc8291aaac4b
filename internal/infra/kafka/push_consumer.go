package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
)

// NotificationEventsTopic carries clicks and closes reported back by devices.
const NotificationEventsTopic = "notification.events"

// PushConsumer feeds push messages, assignments and notification interactions to the bridge.
type PushConsumer struct {
	handler       port.PushHandler
	pushTopic     string
	eventsTopic   string
	assignedTopic string
	logger        *zap.Logger
}

// assignedEnvelope is the wire shape of intervention.assigned events written by EventPublisher.
type assignedEnvelope struct {
	EventID string `json:"event_id"`
	Payload struct {
		InterventionID  string    `json:"intervention_id"`
		EstablishmentID string    `json:"establishment_id"`
		AssigneeIDs     []string  `json:"assignee_ids"`
		AssignedBy      string    `json:"assigned_by"`
		Priority        string    `json:"priority"`
		MissionSummary  string    `json:"mission_summary"`
		AssignedAt      time.Time `json:"assigned_at"`
	} `json:"payload"`
}

// NewPushConsumer constructs a consumer group handler for the push bridge.
func NewPushConsumer(handler port.PushHandler, cfg config.KafkaSettings, logger *zap.Logger) *PushConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushConsumer{
		handler:       handler,
		pushTopic:     TopicName(cfg.TopicPrefix, cfg.PushTopic),
		eventsTopic:   TopicName(cfg.TopicPrefix, NotificationEventsTopic),
		assignedTopic: TopicName(cfg.TopicPrefix, EventInterventionAssigned),
		logger:        logger,
	}
}

// NewConsumerGroup creates the Sarama consumer group used by the bridge.
func NewConsumerGroup(cfg config.KafkaSettings) (sarama.ConsumerGroup, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}
	return group, nil
}

// Topics lists the subscribed topics.
func (c *PushConsumer) Topics() []string {
	return []string{c.pushTopic, c.eventsTopic, c.assignedTopic}
}

// Run consumes until ctx is cancelled or the group is closed.
func (c *PushConsumer) Run(ctx context.Context, group sarama.ConsumerGroup) error {
	go func() {
		for err := range group.Errors() {
			c.logger.Warn("kafka consumer group error", zap.Error(err))
		}
	}()

	for {
		if err := group.Consume(ctx, c.Topics(), c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("consume push topics: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *PushConsumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *PushConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler. Handler errors are logged and the offset still advances.
func (c *PushConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := c.HandleMessage(session.Context(), msg); err != nil {
			c.logger.Warn("push message handling failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// HandleMessage decodes a Kafka message and dispatches it by topic.
// Undecodable payloads are discarded.
func (c *PushConsumer) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}

	ctx, span := otel.Tracer("gestihotel/pushbridge").Start(ctx, "push.consume")
	span.SetAttributes(attribute.String("messaging.destination", msg.Topic))
	defer span.End()

	switch msg.Topic {
	case c.pushTopic:
		var push domain.PushMessage
		if err := json.Unmarshal(msg.Value, &push); err != nil {
			c.logger.Debug("discard malformed push payload", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		return c.handler.HandlePush(ctx, push)
	case c.eventsTopic:
		var event domain.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Debug("discard malformed notification event", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		return c.handler.HandleNotificationEvent(ctx, event)
	case c.assignedTopic:
		var envelope assignedEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			c.logger.Debug("discard malformed assignment event", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		p := envelope.Payload
		if p.InterventionID == "" {
			c.logger.Debug("discard assignment event without intervention", zap.String("event_id", envelope.EventID))
			return nil
		}
		return c.handler.HandleInterventionAssigned(ctx, domain.InterventionAssignedEvent{
			EventID:         envelope.EventID,
			InterventionID:  p.InterventionID,
			EstablishmentID: p.EstablishmentID,
			AssigneeIDs:     p.AssigneeIDs,
			AssignedBy:      p.AssignedBy,
			Priority:        domain.Priority(p.Priority),
			MissionSummary:  p.MissionSummary,
			AssignedAt:      p.AssignedAt,
		})
	default:
		return fmt.Errorf("unexpected topic %q", msg.Topic)
	}
}
