package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/turn"
)

func TestTurnEventsAreCounted(t *testing.T) {
	m := New()
	ctx := context.Background()
	start := time.Now()

	m.OnEvent(ctx, turn.Event{Type: turn.EventStateChanged, State: turn.StateRecording})
	m.OnEvent(ctx, turn.Event{Type: turn.EventAudioChunk, Chunk: []byte("abcd")})
	m.OnEvent(ctx, turn.Event{Type: turn.EventTurnCompleted, Record: &entities.TurnRecord{
		Source:     entities.TurnSourceMicrophone,
		Outcome:    entities.OutcomeCompleted,
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Durations:  entities.StageDurations{Recording: time.Second, Generating: time.Second},
	}})

	if got := counterValue(t, m.TurnsTotal.WithLabelValues("completed", "microphone")); got != 1 {
		t.Errorf("Expected 1 completed turn, got %v", got)
	}
	if got := counterValue(t, m.StateTransitions.WithLabelValues("recording")); got != 1 {
		t.Errorf("Expected 1 recording transition, got %v", got)
	}
	if got := counterValue(t, m.AudioBytes); got != 4 {
		t.Errorf("Expected 4 audio bytes, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveBenchmark("gemma-3-27b-it", true, 250*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "suara_benchmark_latency_seconds") {
		t.Errorf("Expected benchmark histogram in exposition")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Errorf("Expected Go collector in exposition")
	}
}

func TestNewIsIndependent(t *testing.T) {
	New()
	New()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}
