package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника для событий pipeline.
const Exchange = "mlpipe.lifecycle"

// Queue — очередь, в которую складываются все события.
// Наблюдатели могут объявлять собственные очереди с нужными binding'ами.
const Queue = "mlpipe.events"

// Routing keys событий.
const (
	RoutingKeyPipelineStarted  = "pipeline.started"
	RoutingKeyPipelineFinished = "pipeline.finished"
	RoutingKeyStepFinished     = "step.finished"
)

// SetupTopology объявляет exchange, очередь и binding'и.
// Идемпотентно: повторные вызовы безопасны.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			Exchange,
			"topic",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", Exchange, err)
		}

		_, err = ch.QueueDeclare(
			Queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", Queue, err)
		}

		// Все события pipeline и шагов попадают в одну очередь.
		for _, key := range []string{"pipeline.*", "step.*"} {
			if err := ch.QueueBind(Queue, key, Exchange, false, nil); err != nil {
				return fmt.Errorf("bind %s to %s: %w", Queue, Exchange, err)
			}
		}

		return nil
	})
}
