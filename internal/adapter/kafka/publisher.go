package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// Publisher produces each completed hotspot generation to a Kafka topic.
// It implements pipeline.GenerationPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the hotspot topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishGeneration writes gen as a single message keyed by its generation
// id. Empty generations are published too so consumers learn the set cleared.
func (p *Publisher) PublishGeneration(ctx context.Context, gen domain.Generation) error {
	msg, err := serializeGeneration(gen)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write generation %s: %w", gen.ID, err)
	}
	p.logger.Debug("hotspot generation published", "generation_id", gen.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeGeneration marshals a Generation into a Kafka message.
func serializeGeneration(gen domain.Generation) (kafkago.Message, error) {
	data, err := json.Marshal(gen)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hotspot generation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(gen.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: []byte(gen.GeneratedAt.Format(time.RFC3339))},
			{Key: "hotspot_count", Value: []byte(strconv.Itoa(len(gen.Hotspots)))},
		},
	}, nil
}
