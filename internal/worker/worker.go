package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"catalog-service/internal/broker"
	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

const (
	initialRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
	// a subscription that lasted this long resets the backoff
	healthySession = time.Minute
)

// Invalidator drops cached copies of a product. service.ProductService implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, id int64)
}

type reconnector interface {
	Reconnect(ctx context.Context) error
}

// NotificationWorker consumes the service's own queue and applies inbound requests
type NotificationWorker struct {
	subscriber  broker.Subscriber
	queue       string
	invalidator Invalidator
	logger      *zap.Logger
	retryDelay  time.Duration

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewNotificationWorker creates a worker consuming the queue of serviceName
func NewNotificationWorker(subscriber broker.Subscriber, serviceName string, invalidator Invalidator) *NotificationWorker {
	return &NotificationWorker{
		subscriber:  subscriber,
		queue:       broker.QueueName(serviceName),
		invalidator: invalidator,
		logger:      util.GetLogger(),
		retryDelay:  initialRetryDelay,
		now:         time.Now,
		after:       time.After,
	}
}

// Start consumes until ctx is cancelled, re-subscribing with backoff when the
// subscription drops.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker", zap.String("queue", w.queue))

	delay := w.retryDelay
	for {
		started := w.now()
		err := w.subscriber.Consume(ctx, w.queue, w.HandleMessage)
		if ctx.Err() != nil {
			w.logger.Info("Notification worker stopped")
			return nil
		}
		if w.now().Sub(started) >= healthySession {
			delay = w.retryDelay
		}

		w.logger.Warn("Consumer stopped, resubscribing",
			zap.String("queue", w.queue),
			zap.Duration("retry_in", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-w.after(delay):
		}

		if r, ok := w.subscriber.(reconnector); ok && errors.Is(err, broker.ErrNotConnected) {
			if err := r.Reconnect(ctx); err != nil {
				w.logger.Warn("Broker reconnect failed", zap.Error(err))
			}
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// HandleMessage applies one inbound message. Handling is idempotent because
// delivery is at-least-once.
func (w *NotificationWorker) HandleMessage(ctx context.Context, msg *models.OutboundMessage) error {
	switch msg.Method {
	case models.MethodProductRefresh:
		var req models.RefreshRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil || req.ProductID <= 0 {
			// redelivery cannot fix a bad payload
			w.logger.Warn("Ignoring invalid refresh request",
				zap.String("message_id", msg.MessageID),
				zap.ByteString("payload", msg.Payload))
			return nil
		}

		w.invalidator.Invalidate(ctx, req.ProductID)
		w.logger.Info("Product cache refreshed",
			zap.Int64("product_id", req.ProductID),
			zap.String("from_service", msg.FromService))
		return nil

	default:
		w.logger.Debug("Unhandled message method",
			zap.String("method", msg.Method),
			zap.String("message_id", msg.MessageID))
		return nil
	}
}
