package report

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/adnanq/wlandiag/internal/session"
)

// Publisher forwards finished session results to a Kafka topic so NOC
// pipelines can aggregate troubleshooting sessions across operators. It
// forwards single results only; nothing is stored or batched here.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})

	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("session publisher initialized")

	return &Publisher{writer: writer}, nil
}

// Publish sends one session result, keyed by session ID.
func (p *Publisher) Publish(ctx context.Context, result *session.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.SessionID),
		Value: data,
	})
}

// Close shuts the writer down gracefully.
func (p *Publisher) Close() error {
	log.Debug().Msg("closing session publisher")
	return p.writer.Close()
}
