package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Shkulipa/auction-contract/auction"
)

// DefaultExchange is the topic exchange lifecycle events are published to.
// Event names ("auction.created", "auction.ended") are the routing keys.
const DefaultExchange = "auction.events"

// AMQPEvents implements auction.EventSink over a RabbitMQ topic exchange.
type AMQPEvents struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
}

// NewAMQPEvents dials the broker and declares the durable topic exchange.
func NewAMQPEvents(url, exchange string, log *slog.Logger) (*AMQPEvents, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if log == nil {
		log = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	return &AMQPEvents{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

// Publish sends the event as JSON, routed by its name.
func (p *AMQPEvents) Publish(ctx context.Context, ev auction.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", ev.Name(), err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		ev.Name(), // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to exchange %s: %w", p.exchange, err)
	}

	p.log.Debug("event published", "exchange", p.exchange, "routingKey", ev.Name())
	return nil
}

// Close releases the channel and connection.
func (p *AMQPEvents) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
