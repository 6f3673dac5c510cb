// Package metrics exposes prometheus collectors for turns, synthesis and benchmarks.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satriahrh/suara/internal/turn"
)

const namespace = "suara"

// Metrics holds every collector, registered on its own registry
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal       *prometheus.CounterVec
	TurnDuration     prometheus.Histogram
	StageDuration    *prometheus.HistogramVec
	StateTransitions *prometheus.CounterVec
	AudioChunks      prometheus.Counter
	AudioBytes       prometheus.Counter
	BenchmarkLatency *prometheus.HistogramVec
	WebsocketClients prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go and process collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of turns by outcome",
		}, []string{"outcome", "source"}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Wall time of a turn from request to return to idle",
			Buckets:   []float64{0.5, 1, 2, 5, 8, 10, 15, 30, 60},
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"stage"}),
		StateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of orchestrator state changes",
		}, []string{"state"}),
		AudioChunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_chunks_total",
			Help:      "Total number of synthesized audio chunks delivered to a sink",
		}),
		AudioBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "Total synthesized audio bytes delivered to a sink",
		}),
		BenchmarkLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "benchmark_latency_seconds",
			Help:      "Language model latency measured by benchmarks",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"model", "success"}),
		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnEvent records turn events; it implements turn.Observer
func (m *Metrics) OnEvent(ctx context.Context, event turn.Event) {
	switch event.Type {
	case turn.EventStateChanged:
		m.StateTransitions.WithLabelValues(string(event.State)).Inc()
	case turn.EventAudioChunk:
		m.AudioChunks.Inc()
		m.AudioBytes.Add(float64(len(event.Chunk)))
	case turn.EventTurnCompleted:
		if event.Record == nil {
			return
		}
		record := event.Record
		m.TurnsTotal.WithLabelValues(string(record.Outcome), string(record.Source)).Inc()
		m.TurnDuration.Observe(record.FinishedAt.Sub(record.StartedAt).Seconds())
		m.observeStage("recording", record.Durations.Recording)
		m.observeStage("transcribing", record.Durations.Transcribing)
		m.observeStage("generating", record.Durations.Generating)
		m.observeStage("speaking", record.Durations.Speaking)
	}
}

// ObserveBenchmark records one benchmark latency
func (m *Metrics) ObserveBenchmark(model string, success bool, latency time.Duration) {
	m.BenchmarkLatency.WithLabelValues(model, strconv.FormatBool(success)).Observe(latency.Seconds())
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if d > 0 {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}
