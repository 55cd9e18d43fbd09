// Package publish fans completed bars out to downstream consumers over Kafka.
package publish

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/LimeMojito/trading-data-stream/pkg/config"
	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
)

// BarPublisher buffers completed bars and writes them to a Kafka topic on
// flush. It satisfies the aggregator's notifier contract so a search or bulk
// load can fan out bars as they complete.
type BarPublisher struct {
	kafkaWriter *kafka.Writer
	log         logger.Interface
	mu          sync.Mutex
	pending     []kafka.Message
}

// NewBarPublisher creates a Kafka publisher for completed bars.
func NewBarPublisher(cfg config.KafkaConfig, log logger.Interface) *BarPublisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})
	return &BarPublisher{
		kafkaWriter: kafkaWriter,
		log:         log,
	}
}

// Notify buffers one completed bar, keyed by its partition key so per-stream
// ordering survives topic partitioning.
func (p *BarPublisher) Notify(bar model.Bar) error {
	payload, err := json.Marshal(bar)
	if err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, kafka.Message{
		Key:   []byte(bar.PartitionKey()),
		Value: payload,
	})
	return nil
}

// Flush writes the buffered bars to the topic.
func (p *BarPublisher) Flush() error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	if err := p.kafkaWriter.WriteMessages(context.Background(), pending...); err != nil {
		p.log.Error(err, logger.NewField("bars", len(pending)))
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	p.log.Info("published bars", logger.NewField("bars", len(pending)))
	return nil
}

// Close releases the underlying writer.
func (p *BarPublisher) Close() error {
	return p.kafkaWriter.Close()
}
