package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"adventure-server/internal/models"
)

// TurnEventPayload is the message emitted after every committed turn.
// Downstream consumers (analytics, replay tooling) get the confirmed
// events, never the prose.
type TurnEventPayload struct {
	SessionID string         `json:"session_id"`
	WorldID   string         `json:"world_id"`
	TurnCount int            `json:"turn_count"`
	Status    string         `json:"status"`
	Events    []models.Event `json:"events"`
	Timestamp time.Time      `json:"timestamp"`
}

// TurnEventPublisher publishes turn events. Publishing is best-effort from
// the game's point of view; a broker outage must never fail a turn.
type TurnEventPublisher interface {
	PublishTurnEvents(ctx context.Context, payload TurnEventPayload) error
}

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQTurnEventPublisher opens a channel on the given connection and
// declares the turn events queue. Queue parameters must match any consumer.
func NewRabbitMQTurnEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (TurnEventPublisher, error) {
	log := logger.Named("TurnEventPublisher")
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("turn event publisher: opening channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("turn event publisher: declaring queue %q: %w", queueName, err)
	}
	log.Info("Turn event queue declared", zap.String("queue", queueName))
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

func (p *rabbitMQPublisher) PublishTurnEvents(ctx context.Context, payload TurnEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding turn event payload for session %s: %w", payload.SessionID, err)
	}
	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Failed to publish turn events",
			zap.String("sessionID", payload.SessionID),
			zap.Error(err),
		)
		return fmt.Errorf("publishing turn events for session %s: %w", payload.SessionID, err)
	}
	return nil
}

func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "adventure-server",
			},
		)
		if err == nil {
			return nil
		}
		p.logger.Warn("Publish attempt failed",
			zap.Int("attempt", attempt),
			zap.String("queue", p.queueName),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("publishing to queue %s after retries: %w", p.queueName, err)
}

// NopPublisher drops every payload. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTurnEvents(context.Context, TurnEventPayload) error { return nil }
