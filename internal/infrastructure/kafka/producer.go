package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewProducer(brokers []string, topic string, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// Checkout latency is user-facing; flush small batches quickly and
		// give up on a dead broker well before the pipeline's own budget.
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{
		writer: writer,
		log:    log.With().Str("component", "kafka-producer").Logger(),
	}
}

func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		p.log.Error().Err(err).Str("key", key).Msg("write message")
		return err
	}
	p.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
