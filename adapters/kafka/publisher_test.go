package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/suara/domain/entities"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisherDisabledWithoutBrokers(t *testing.T) {
	publisher := NewTurnPublisher(Config{}, zaptest.NewLogger(t))
	if publisher.Enabled() {
		t.Fatalf("Expected publisher disabled")
	}
	if err := publisher.PublishTurn(context.Background(), &entities.TurnRecord{ID: "t1"}); err != nil {
		t.Errorf("Expected log-only publish to succeed, got %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestPublishTurnKeyedBySession(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &TurnPublisher{writer: writer, topic: "turns", enabled: true, logger: zaptest.NewLogger(t)}

	record := &entities.TurnRecord{ID: "t1", SessionID: "s1", Outcome: entities.OutcomeCompleted, Reply: "안녕"}
	if err := publisher.PublishTurn(context.Background(), record); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "s1" {
		t.Errorf("Expected key s1, got %s", msg.Key)
	}

	var decoded entities.TurnRecord
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("Expected JSON payload, got %v", err)
	}
	if decoded.Reply != "안녕" || decoded.Outcome != entities.OutcomeCompleted {
		t.Errorf("Unexpected payload %+v", decoded)
	}

	publisher.Close()
	if !writer.closed {
		t.Errorf("Expected writer closed")
	}
}

func TestPublishTurnWriteError(t *testing.T) {
	writeErr := errors.New("leader not available")
	publisher := &TurnPublisher{writer: &fakeWriter{err: writeErr}, topic: "turns", enabled: true, logger: zaptest.NewLogger(t)}

	err := publisher.PublishTurn(context.Background(), &entities.TurnRecord{ID: "t1", SessionID: "s1"})
	if !errors.Is(err, writeErr) {
		t.Errorf("Expected write error, got %v", err)
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("KAFKA_TOPIC", "voice")

	config := NewConfigFromEnv()
	if len(config.Brokers) != 2 || config.Brokers[1] != "b:9092" || config.Topic != "voice" {
		t.Errorf("Unexpected config %+v", config)
	}
}
