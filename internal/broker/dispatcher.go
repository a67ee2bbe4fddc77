package broker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by transports that have no live connection.
var ErrNotConnected = errors.New("broker: not connected")

// Delivery is a serialized message ready to be handed to a transport
type Delivery struct {
	MessageID   string
	Body        []byte
	Priority    uint8
	Urgency     models.Urgency
	ContentType string
	Timestamp   time.Time
}

// Transport moves deliveries onto a named durable queue
type Transport interface {
	Name() string
	Send(ctx context.Context, queue string, d Delivery) error
	Reconnect(ctx context.Context) error
	Close() error
}

// Handler processes one inbound message. Returning an error leaves the
// message unacknowledged so the broker redelivers it.
type Handler func(ctx context.Context, msg *models.OutboundMessage) error

// Subscriber consumes a durable queue until ctx is cancelled or the connection drops
type Subscriber interface {
	Consume(ctx context.Context, queue string, handler Handler) error
}

// QueueName derives the queue of a destination. The mapping is deterministic,
// so every producer targets the same queue without coordination.
func QueueName(destination string) string {
	name := strings.TrimPrefix(destination, "http://")
	name = strings.TrimPrefix(name, "https://")
	name = strings.NewReplacer("/", "_", ":", "_").Replace(name)
	return "queue_" + name
}

// Dispatcher publishes urgency-tagged messages with one reconnect attempt on failure
type Dispatcher struct {
	transport Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. A nil transport makes every publish fail fast.
func NewDispatcher(transport Transport) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		logger:    util.GetLogger(),
		now:       time.Now,
	}
}

// Publish delivers payload to destination's queue and reports whether the broker accepted it.
// Transport errors are logged and never returned.
func (d *Dispatcher) Publish(
	ctx context.Context,
	destination, source, method string,
	payload interface{},
	urgency models.Urgency,
) bool {
	ctx, span := util.StartSpan(ctx, "Dispatcher.Publish")
	defer span.End()

	if d.transport == nil {
		d.logger.Warn("Messaging not available, message not sent",
			zap.String("to_service", destination),
			zap.String("method", method))
		util.NotificationsFailedTotal.WithLabelValues("none").Inc()
		return false
	}

	delivery, err := d.buildDelivery(destination, source, method, payload, urgency)
	if err != nil {
		util.SpanError(span, err)
		d.logger.Error("Failed to encode message", zap.String("method", method), zap.Error(err))
		util.NotificationsFailedTotal.WithLabelValues(d.transport.Name()).Inc()
		return false
	}

	queue := QueueName(destination)
	if err := d.transport.Send(ctx, queue, delivery); err != nil {
		d.logger.Warn("Publish failed, reconnecting once",
			zap.String("queue", queue),
			zap.String("transport", d.transport.Name()),
			zap.Error(err))

		if err := d.transport.Reconnect(ctx); err != nil {
			return d.failed(span, queue, delivery, err)
		}
		if err := d.transport.Send(ctx, queue, delivery); err != nil {
			return d.failed(span, queue, delivery, err)
		}
	}

	util.NotificationsPublishedTotal.WithLabelValues(d.transport.Name(), string(delivery.Urgency)).Inc()
	d.logger.Debug("Published message",
		zap.String("queue", queue),
		zap.String("method", method),
		zap.String("message_id", delivery.MessageID),
		zap.Uint8("priority", delivery.Priority))
	return true
}

func (d *Dispatcher) failed(span trace.Span, queue string, delivery Delivery, err error) bool {
	util.SpanError(span, err)
	util.NotificationsFailedTotal.WithLabelValues(d.transport.Name()).Inc()
	d.logger.Error("Message not delivered",
		zap.String("queue", queue),
		zap.String("message_id", delivery.MessageID),
		zap.Error(err))
	return false
}

func (d *Dispatcher) buildDelivery(destination, source, method string, payload interface{}, urgency models.Urgency) (Delivery, error) {
	if _, err := models.ParseUrgency(string(urgency)); err != nil {
		urgency = models.UrgencyMedium
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Delivery{}, err
	}

	msg := models.OutboundMessage{
		MessageID:   uuid.New().String(),
		FromService: source,
		ToService:   destination,
		Method:      method,
		Payload:     body,
		Urgency:     urgency,
		Timestamp:   d.now().UTC(),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return Delivery{}, err
	}

	return Delivery{
		MessageID:   msg.MessageID,
		Body:        raw,
		Priority:    urgency.Priority(),
		Urgency:     urgency,
		ContentType: "application/json",
		Timestamp:   msg.Timestamp,
	}, nil
}

// Close closes the underlying transport
func (d *Dispatcher) Close() error {
	if d.transport == nil {
		return nil
	}
	return d.transport.Close()
}

// decodeEnvelope parses an inbound message body
func decodeEnvelope(body []byte) (*models.OutboundMessage, error) {
	var msg models.OutboundMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
