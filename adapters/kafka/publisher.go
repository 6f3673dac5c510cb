// Package kafka publishes finished turns to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const defaultTopic = "suara.turns"

// Config holds Kafka publisher configuration
type Config struct {
	Brokers []string
	Topic   string
}

// NewConfigFromEnv reads KAFKA_BROKERS (comma separated) and KAFKA_TOPIC
func NewConfigFromEnv() Config {
	var brokers []string
	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return Config{Brokers: brokers, Topic: os.Getenv("KAFKA_TOPIC")}
}

// messageWriter is the part of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TurnPublisher writes one message per finished turn, keyed by session.
// Without brokers it only logs.
type TurnPublisher struct {
	writer  messageWriter
	topic   string
	enabled bool
	logger  *zap.Logger
}

var _ repositories.TurnEventPublisher = (*TurnPublisher)(nil)

// NewTurnPublisher creates a publisher; no brokers means log-only mode
func NewTurnPublisher(config Config, logger *zap.Logger) *TurnPublisher {
	if config.Topic == "" {
		config.Topic = defaultTopic
	}

	if len(config.Brokers) == 0 {
		logger.Info("Kafka disabled, using log-only mode")
		return &TurnPublisher{topic: config.Topic, logger: logger}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info("Kafka publisher initialized",
		zap.Strings("brokers", config.Brokers),
		zap.String("topic", config.Topic))

	return &TurnPublisher{writer: writer, topic: config.Topic, enabled: true, logger: logger}
}

// PublishTurn implements repositories.TurnEventPublisher
func (p *TurnPublisher) PublishTurn(ctx context.Context, record *entities.TurnRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	p.logger.Debug("Publishing turn",
		zap.String("topic", p.topic),
		zap.String("turnID", record.ID),
		zap.String("outcome", string(record.Outcome)))

	if !p.enabled {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(record.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("turn_completed")},
			{Key: "outcome", Value: []byte(record.Outcome)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to write to Kafka", zap.String("topic", p.topic), zap.Error(err))
		return err
	}
	return nil
}

// Enabled reports whether messages reach Kafka
func (p *TurnPublisher) Enabled() bool {
	return p.enabled
}

// Close flushes pending messages and closes the writer
func (p *TurnPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
