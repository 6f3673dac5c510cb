package usecase

import (
	"context"
	"math"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const sampleOutputRunes = 100

// LatencyObserver receives benchmark latencies, e.g. a prometheus histogram
type LatencyObserver interface {
	ObserveBenchmark(model string, success bool, latency time.Duration)
}

// BenchmarkService measures language-model latency and memory use
type BenchmarkService struct {
	llm          repositories.LargeLanguageModel
	defaultModel string
	observer     LatencyObserver
	logger       *zap.Logger
}

// NewBenchmarkService creates a benchmark service. observer may be nil.
func NewBenchmarkService(llm repositories.LargeLanguageModel, defaultModel string, observer LatencyObserver, logger *zap.Logger) *BenchmarkService {
	return &BenchmarkService{
		llm:          llm,
		defaultModel: defaultModel,
		observer:     observer,
		logger:       logger,
	}
}

// Measure runs prompt once against model and reports the cost
func (b *BenchmarkService) Measure(ctx context.Context, model, prompt string) entities.PerformanceSample {
	if model == "" {
		model = b.defaultModel
	}

	startHeap := heapAlloc()
	start := time.Now()

	generation, err := b.llm.Generate(ctx, repositories.GenerateRequest{Model: model, Prompt: prompt})

	latency := time.Since(start)
	endHeap := heapAlloc()

	sample := entities.PerformanceSample{
		Model:         model,
		Latency:       latency,
		LatencyMs:     round2(float64(latency.Microseconds()) / 1000),
		MemoryDeltaMB: round2((float64(endHeap) - float64(startHeap)) / 1024 / 1024),
	}

	if err != nil {
		b.logger.Warn("Benchmark call failed", zap.String("model", model), zap.Error(err))
		sample.Error = err.Error()
	} else {
		sample.Success = true
		sample.TokenCount = len(strings.Fields(generation.Text))
		sample.SampleOutput = truncateRunes(generation.Text, sampleOutputRunes)
	}

	if b.observer != nil {
		b.observer.ObserveBenchmark(model, sample.Success, latency)
	}

	b.logger.Info("Benchmark completed",
		zap.String("model", model),
		zap.Bool("success", sample.Success),
		zap.Float64("latencyMs", sample.LatencyMs),
		zap.Int("tokens", sample.TokenCount))
	return sample
}

// Models lists the models the engine offers
func (b *BenchmarkService) Models(ctx context.Context) ([]string, error) {
	return b.llm.ListModels(ctx)
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
