package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"homestay/config"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const writeTimeout = 10 * time.Second

type Message struct {
	Key     string
	Value   any
	Headers map[string]string
}

func (m *Message) ToKafkaMessage(topic string) (kafkaGo.Message, error) {
	var value []byte

	switch v := m.Value.(type) {
	case []byte:
		value = v
	case string:
		value = []byte(v)
	default:
		jsonValue, err := json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal message value to JSON")

			return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
		}

		value = jsonValue
	}

	headers := make([]kafkaGo.Header, 0, len(m.Headers))
	for key, val := range m.Headers {
		headers = append(headers, kafkaGo.Header{Key: key, Value: []byte(val)})
	}

	return kafkaGo.Message{
		Topic:   topic,
		Key:     []byte(m.Key),
		Value:   value,
		Headers: headers,
	}, nil
}

// Producer publishes messages synchronously so callers learn about delivery failures.
type Producer interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Close() error
}

type producerImpl struct {
	writer *kafkaGo.Writer
}

func New(config *config.Config) Producer {
	transport := &kafkaGo.Transport{}

	if config.Kafka.SASL.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: config.Kafka.SASL.Username,
			Password: config.Kafka.SASL.Password,
		}
	}

	writer := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(config.Kafka.Brokers...),
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           writeTimeout,
	}

	log.Info().Strs("brokers", config.Kafka.Brokers).Msg("Kafka producer initialized")

	return &producerImpl{writer: writer}
}

func (k *producerImpl) SendMessages(ctx context.Context, topic string, messages ...Message) (err error) {
	msgs := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage(topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to convert message to Kafka message.")

			return fmt.Errorf("failed to convert message to Kafka message: %w", err)
		}

		msgs = append(msgs, msg)
	}

	if err = k.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to send message to Kafka.")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Int("count", len(msgs)).Msg("Sent message successfully.")

	return nil
}

func (k *producerImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}
