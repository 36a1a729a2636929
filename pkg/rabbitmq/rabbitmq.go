// Package rabbitmq publishes and consumes storefront domain events.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/multierr"

	"storefront/pkg/logger"
)

const (
	// Exchange is the topic exchange every storefront event goes through.
	Exchange = "storefront.events"
	// OrderQueue receives every order.* event.
	OrderQueue = "order_events"

	orderBinding = "order.*"
)

// ErrClosed is returned once the client has been closed.
var ErrClosed = errors.New("rabbitmq: client closed")

// Handler processes one delivery. Returning an error nacks it.
type Handler func(ctx context.Context, msg amqp.Delivery) error

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger

	// guards channel publishes, which are not safe for concurrent use
	mu     sync.Mutex
	closed bool
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient dials the broker and declares the exchange, queue and binding.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("open channel: %w", err), conn.Close())
	}

	if err := declareTopology(ch); err != nil {
		return nil, multierr.Combine(err, ch.Close(), conn.Close())
	}

	log.Info(context.Background(), "rabbitmq connected")
	return &Client{conn: conn, channel: ch, log: log}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	if _, err := ch.QueueDeclare(OrderQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", OrderQueue, err)
	}
	if err := ch.QueueBind(OrderQueue, orderBinding, Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.channel != nil {
		err = multierr.Append(err, c.channel.Close())
	}
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}

// Publish sends a persistent JSON message to the events exchange.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.channel == nil {
		return ErrClosed
	}

	err := c.channel.Publish(Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	c.log.Debug(c.log.WithField(ctx, "routing_key", routingKey), "event published")
	return nil
}

// ConsumeOrderEvents delivers order events to handler until ctx is done or
// the broker closes the delivery channel.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler Handler) error {
	c.mu.Lock()
	if c.closed || c.channel == nil {
		c.mu.Unlock()
		return ErrClosed
	}
	msgs, err := c.channel.Consume(OrderQueue, "", false, false, false, false, nil)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	c.log.Info(ctx, "consuming order events")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			Dispatch(ctx, c.log, msg, handler)
		}
	}
}

// Dispatch runs handler for msg and settles it. A failed first delivery is
// requeued once; a failed redelivery is dropped.
func Dispatch(ctx context.Context, log *logger.Logger, msg amqp.Delivery, handler Handler) {
	msgCtx := log.WithFields(ctx, map[string]any{
		"routing_key":  msg.RoutingKey,
		"delivery_tag": msg.DeliveryTag,
	})

	if err := handler(msgCtx, msg); err != nil {
		log.Error(msgCtx, "order event handler failed", err)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			log.Error(msgCtx, "nack order event", nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error(msgCtx, "ack order event", ackErr)
	}
}
