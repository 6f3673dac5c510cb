package entities

import "time"

// PerformanceSample is a single language-model latency measurement
type PerformanceSample struct {
	Model         string        `json:"model"`
	Success       bool          `json:"success"`
	Latency       time.Duration `json:"-"`
	LatencyMs     float64       `json:"inference_time_ms"`
	MemoryDeltaMB float64       `json:"memory_usage_mb"`
	TokenCount    int           `json:"token_count"`
	SampleOutput  string        `json:"sample_output,omitempty"`
	Error         string        `json:"error,omitempty"`
}
