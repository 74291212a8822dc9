package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/mlpipe/internal/domain"
)

// EventType — тип события жизненного цикла.
type EventType string

// Типы событий.
const (
	EventPipelineStarted  EventType = "pipeline.started"
	EventPipelineFinished EventType = "pipeline.finished"
	EventStepFinished     EventType = "step.finished"
)

// Event — событие для публикации.
type Event struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Payload — полезная нагрузка (PipelineRun или StepRun).
	Payload any `json:"payload"`

	// Timestamp — время создания события.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher публикует события жизненного цикла pipeline.
// Реализует pipeline.Notifier.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PipelineStarted публикует событие о начале выполнения pipeline.
func (p *Publisher) PipelineStarted(ctx context.Context, run *domain.PipelineRun) error {
	return p.publish(ctx, RoutingKeyPipelineStarted, EventPipelineStarted, run)
}

// PipelineFinished публикует событие о завершении pipeline.
func (p *Publisher) PipelineFinished(ctx context.Context, run *domain.PipelineRun) error {
	return p.publish(ctx, RoutingKeyPipelineFinished, EventPipelineFinished, run)
}

// StepFinished публикует событие о завершении шага.
func (p *Publisher) StepFinished(ctx context.Context, step *domain.StepRun) error {
	return p.publish(ctx, RoutingKeyStepFinished, EventStepFinished, step)
}

// publish сериализует событие и отправляет его в exchange.
func (p *Publisher) publish(ctx context.Context, routingKey string, eventType EventType, payload any) error {
	event := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			Exchange,
			routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // событие переживёт рестарт RabbitMQ
				MessageId:    event.ID,
				Timestamp:    event.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}

		p.logger.Debug("published event",
			"routing_key", routingKey,
			"event_id", event.ID,
		)
		return nil
	})
}
