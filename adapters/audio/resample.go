package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/satriahrh/suara/domain/entities"
)

// Resample converts buffer to targetRate. Buffers already at targetRate are returned as is.
func Resample(buffer entities.AudioBuffer, targetRate int) (entities.AudioBuffer, error) {
	if targetRate <= 0 || buffer.SampleRate == targetRate || buffer.IsEmpty() {
		return buffer, nil
	}

	resampler, err := resampling.New(&resampling.Config{
		InputRate:  float64(buffer.SampleRate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("failed to create resampler: %w", err)
	}

	input := make([]float64, len(buffer.Samples))
	for i, s := range buffer.Samples {
		input[i] = float64(s)
	}

	output, err := resampler.Process(input)
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("resample error: %w", err)
	}

	// the filter holds back its tail until flushed
	tail, err := resampler.Flush()
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("resample flush error: %w", err)
	}
	output = append(output, tail...)

	samples := make([]float32, len(output))
	for i, s := range output {
		samples[i] = float32(s)
	}

	return entities.NewAudioBuffer(samples, targetRate), nil
}
