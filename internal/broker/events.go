package broker

import (
	"context"
	"sync"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"go.uber.org/zap"
)

const defaultNotifyTimeout = 5 * time.Second

// Publisher is the part of Dispatcher the event publisher depends on
type Publisher interface {
	Publish(ctx context.Context, destination, source, method string, payload interface{}, urgency models.Urgency) bool
}

// EventPublisher fans product events out to every configured destination.
// Delivery happens in the background and never blocks or fails the caller.
type EventPublisher struct {
	publisher    Publisher
	source       string
	destinations []string
	timeout      time.Duration
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(publisher Publisher, source string, destinations []string, timeout time.Duration) *EventPublisher {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &EventPublisher{
		publisher:    publisher,
		source:       source,
		destinations: destinations,
		timeout:      timeout,
		logger:       util.GetLogger(),
	}
}

// Notify publishes event under method to each destination. The request context
// only contributes its values; cancellation of the request does not abort delivery.
func (ep *EventPublisher) Notify(ctx context.Context, method string, event models.ProductEvent, urgency models.Urgency) {
	if len(ep.destinations) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	ep.wg.Add(1)
	go func() {
		defer ep.wg.Done()

		ctx, cancel := context.WithTimeout(detached, ep.timeout)
		defer cancel()

		for _, destination := range ep.destinations {
			if !ep.publisher.Publish(ctx, destination, ep.source, method, event, urgency) {
				ep.logger.Warn("Notification not delivered",
					zap.String("destination", destination),
					zap.String("method", method),
					zap.Int64("product_id", event.ProductID))
			}
		}
	}()
}

// Wait blocks until in-flight notifications finish
func (ep *EventPublisher) Wait() {
	ep.wg.Wait()
}
