package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.CodeInternal, "producer closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerMetrics holds producer counters.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
}

// Producer publishes event envelopes to the service topic.
type Producer struct {
	writer     WriterInterface
	topic      string
	logger     logging.Logger
	closed     atomic.Bool
	metrics    *ProducerMetrics
	appMetrics *prometheus.AppMetrics
}

// NewProducer creates a Producer from the service configuration.
// appMetrics may be nil.
func NewProducer(cfg config.KafkaConfig, appMetrics *prometheus.AppMetrics, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.CodeInvalidParam, "kafka topic required")
	}

	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  retries + 1,
		BatchSize:    batchSize,
		BatchTimeout: time.Second,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer:     writer,
		topic:      cfg.Topic,
		logger:     log,
		metrics:    &ProducerMetrics{},
		appMetrics: appMetrics,
	}, nil
}

// NewProducerWithWriter builds a Producer around an existing writer (for testing).
func NewProducerWithWriter(w WriterInterface, topic string, appMetrics *prometheus.AppMetrics, log logging.Logger) *Producer {
	return &Producer{
		writer:     w,
		topic:      topic,
		logger:     log,
		metrics:    &ProducerMetrics{},
		appMetrics: appMetrics,
	}
}

func (p *Producer) countPublish(eventType, status string) {
	if p.appMetrics != nil {
		p.appMetrics.EventsPublished.WithLabelValues(eventType, status).Inc()
	}
}

// Publish sends one envelope, keyed by event type so related events stay
// ordered within a partition.
func (p *Producer) Publish(ctx context.Context, env *EventEnvelope) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode event")
	}

	msg := kafka.Message{
		Key:   []byte(env.Type),
		Value: value,
		Time:  env.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.MessagesFailed.Add(1)
		p.countPublish(env.Type, "failure")
		return errors.Wrap(err, errors.CodeInternal, "publish failed")
	}

	p.metrics.MessagesSent.Add(1)
	p.countPublish(env.Type, "success")
	p.logger.Debug("Event published",
		logging.String("type", env.Type),
		logging.String("event_id", env.EventID))
	return nil
}

// PublishAsync sends an envelope in the background.  Failures are logged and
// dropped; event delivery never blocks or fails a prediction request.
func (p *Producer) PublishAsync(env *EventEnvelope) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.Publish(ctx, env); err != nil {
			p.logger.Warn("Dropped event",
				logging.String("type", env.Type),
				logging.Err(err))
		}
	}()
}

// Metrics returns a snapshot of the producer counters.
func (p *Producer) Metrics() (sent, failed int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load()
}

// Close shuts the producer down.  Subsequent publishes fail fast.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}
