package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/metrics"
	"github.com/vkurushin/wordchain/internal/model"
)

// Dispatcher routes one decoded update into its room.
type Dispatcher interface {
	Dispatch(ctx context.Context, upd model.Update) error
}

// Consumer reads updates from the update queue one at a time.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer connects to RabbitMQ, declares the durable update queue
// and limits the channel to one unacked delivery.
func NewConsumer(url, queue string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

// Run consumes updates until ctx is cancelled. A delivery is acked
// only after the dispatcher returns, so an update being processed when
// the worker dies is redelivered on restart. Undecodable payloads are
// dropped without requeue.
func (c *Consumer) Run(ctx context.Context, dispatch Dispatcher) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	log.Info().Str("queue", c.queue).Msg("Update consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, dispatch, d)
		}
	}
}

// handle decodes and dispatches one delivery.
func (c *Consumer) handle(ctx context.Context, dispatch Dispatcher, d amqp.Delivery) {
	var upd model.Update
	if err := json.Unmarshal(d.Body, &upd); err != nil {
		metrics.UpdatesDiscarded.Inc()
		log.Error().Err(err).Msg("Discarding malformed update")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("Failed to nack malformed update")
		}
		return
	}

	metrics.UpdatesConsumed.Inc()
	if err := dispatch.Dispatch(ctx, upd); err != nil {
		log.Error().Err(err).Int64("peer_id", upd.PeerID).Msg("Dispatch failed")
	}
	if err := d.Ack(false); err != nil {
		log.Error().Err(err).Msg("Failed to ack update")
	}
}

// Close releases the channel and connection.
func (c *Consumer) Close() error {
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return fmt.Errorf("close channel: %w", err)
	}
	return c.conn.Close()
}
