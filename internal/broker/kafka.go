package broker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"catalog-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// KafkaTransport publishes each queue as a topic. Priority and urgency travel as
// headers because Kafka has no native message priority.
type KafkaTransport struct {
	brokers []string
	groupID string
	logger  *zap.Logger

	mu     sync.RWMutex
	writer *kafka.Writer
}

// NewKafkaTransport creates a Kafka transport
func NewKafkaTransport(brokers []string, groupID string) *KafkaTransport {
	return &KafkaTransport{
		brokers: brokers,
		groupID: groupID,
		writer:  newKafkaWriter(brokers),
		logger:  util.GetLogger(),
	}
}

func newKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

func (t *KafkaTransport) Name() string { return "kafka" }

// Ping dials the first reachable broker
func (t *KafkaTransport) Ping(ctx context.Context) error {
	var errs error
	for _, broker := range t.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return errors.New("no kafka brokers configured")
	}
	return errs
}

// Send writes the delivery to the topic named after queue
func (t *KafkaTransport) Send(ctx context.Context, queue string, d Delivery) error {
	t.mu.RLock()
	writer := t.writer
	t.mu.RUnlock()

	if err := writer.WriteMessages(ctx, kafkaMessage(queue, d)); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Reconnect replaces the writer and its connection pool
func (t *KafkaTransport) Reconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	old := t.writer
	t.writer = newKafkaWriter(t.brokers)
	t.mu.Unlock()

	if err := old.Close(); err != nil {
		t.logger.Warn("Error closing previous kafka writer", zap.Error(err))
	}
	return nil
}

// Consume reads the topic as part of the consumer group and commits only after
// the handler succeeds. A failing handler stops the reader so the message is
// fetched again from the last committed offset.
func (t *KafkaTransport) Consume(ctx context.Context, queue string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     t.brokers,
		Topic:       queue,
		GroupID:     t.groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	t.logger.Info("Consuming topic", zap.String("topic", queue), zap.String("group", t.groupID))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("failed to fetch from %s: %w", queue, err)
		}

		envelope, err := decodeEnvelope(msg.Value)
		if err != nil {
			t.logger.Warn("Dropping malformed message",
				zap.String("topic", queue),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			util.InboundMessagesTotal.WithLabelValues("malformed").Inc()
		} else if err := handler(ctx, envelope); err != nil {
			util.InboundMessagesTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("failed to handle message %s: %w", envelope.MessageID, err)
		} else {
			util.InboundMessagesTotal.WithLabelValues("handled").Inc()
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			t.logger.Error("Error committing message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// Close closes the writer
func (t *KafkaTransport) Close() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.writer.Close()
}

func kafkaMessage(topic string, d Delivery) kafka.Message {
	return kafka.Message{
		Topic: topic,
		Key:   []byte(d.MessageID),
		Value: d.Body,
		Time:  d.Timestamp,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte(d.ContentType)},
			{Key: "priority", Value: []byte(strconv.Itoa(int(d.Priority)))},
			{Key: "urgency", Value: []byte(d.Urgency)},
		},
	}
}
