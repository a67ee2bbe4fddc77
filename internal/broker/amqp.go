package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	amqpDialTimeout = 5 * time.Second
	amqpHeartbeat   = 10 * time.Second
	prefetchCount   = 10
)

// AMQPTransport publishes persistent, prioritized messages to durable RabbitMQ queues
type AMQPTransport struct {
	url    string
	logger *zap.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

// NewAMQPTransport creates a transport. Call Connect before the first send;
// a send on a disconnected transport fails with ErrNotConnected.
func NewAMQPTransport(url string) *AMQPTransport {
	return &AMQPTransport{
		url:      url,
		logger:   util.GetLogger(),
		declared: make(map[string]bool),
	}
}

func (t *AMQPTransport) Name() string { return "amqp" }

// Connected reports whether the broker connection is open
func (t *AMQPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil && !t.conn.IsClosed()
}

// Connect opens the connection and a confirm-mode publishing channel
func (t *AMQPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connectLocked(ctx)
}

// Reconnect drops the current connection and opens a new one
func (t *AMQPTransport) Reconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.closeLocked()
	if err := t.connectLocked(ctx); err != nil {
		return err
	}
	t.logger.Info("Reconnected to message broker")
	return nil
}

func (t *AMQPTransport) connectLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := amqp.DialConfig(t.url, amqp.Config{
		Heartbeat: amqpHeartbeat,
		Dial:      amqp.DefaultDial(amqpDialTimeout),
		Properties: amqp.Table{
			"connection_name": "catalog-service",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = multierr.Append(ch.Close(), conn.Close())
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	t.conn = conn
	t.ch = ch
	t.declared = make(map[string]bool)
	return nil
}

// Send declares the queue on first use and waits for the broker to confirm the message
func (t *AMQPTransport) Send(ctx context.Context, queue string, d Delivery) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ch == nil || t.ch.IsClosed() {
		return ErrNotConnected
	}

	if !t.declared[queue] {
		if err := declareQueue(t.ch, queue); err != nil {
			return err
		}
		t.declared[queue] = true
	}

	confirm, err := t.ch.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, publishing(d))
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed waiting for confirm on %s: %w", queue, err)
	}
	if !acked {
		return fmt.Errorf("broker rejected message %s on %s", d.MessageID, queue)
	}
	return nil
}

// Consume reads queue on a dedicated channel with manual acknowledgement.
// It returns when ctx is cancelled or the delivery channel closes.
func (t *AMQPTransport) Consume(ctx context.Context, queue string, handler Handler) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return ErrNotConnected
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}
	if err := declareQueue(ch, queue); err != nil {
		return err
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	t.logger.Info("Consuming queue", zap.String("queue", queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			t.handleDelivery(ctx, d, handler)
		}
	}
}

func (t *AMQPTransport) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	msg, err := decodeEnvelope(d.Body)
	if err != nil {
		t.logger.Warn("Dropping malformed message",
			zap.String("message_id", d.MessageId),
			zap.Error(err))
		util.InboundMessagesTotal.WithLabelValues("malformed").Inc()
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		t.logger.Error("Failed to handle message, requeueing",
			zap.String("message_id", msg.MessageID),
			zap.String("method", msg.Method),
			zap.Error(err))
		util.InboundMessagesTotal.WithLabelValues("failed").Inc()
		_ = d.Nack(false, true)
		return
	}

	util.InboundMessagesTotal.WithLabelValues("handled").Inc()
	if err := d.Ack(false); err != nil {
		t.logger.Warn("Failed to ack message", zap.String("message_id", msg.MessageID), zap.Error(err))
	}
}

// Close closes the channel and the connection
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *AMQPTransport) closeLocked() error {
	var err error
	if t.ch != nil && !t.ch.IsClosed() {
		err = multierr.Append(err, t.ch.Close())
	}
	if t.conn != nil && !t.conn.IsClosed() {
		err = multierr.Append(err, t.conn.Close())
	}
	t.ch = nil
	t.conn = nil
	return err
}

func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, queueArgs())
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return nil
}

func queueArgs() amqp.Table {
	return amqp.Table{"x-max-priority": int32(models.MaxPriority)}
}

func publishing(d Delivery) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Priority:     d.Priority,
		MessageId:    d.MessageID,
		Timestamp:    d.Timestamp,
		Body:         d.Body,
	}
}
