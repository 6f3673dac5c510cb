package entities

import "time"

const (
	// TranscriptionSampleRate is the rate every captured or loaded buffer is normalized to.
	TranscriptionSampleRate = 16000
	// ProbeDuration is the length of the trial recording used while resolving a device.
	ProbeDuration = 100 * time.Millisecond
)

// AudioBuffer is a mono sequence of float samples in [-1, 1].
// A buffer belongs to the turn that produced it and is consumed once.
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
}

// NewAudioBuffer wraps samples recorded at sampleRate
func NewAudioBuffer(samples []float32, sampleRate int) AudioBuffer {
	return AudioBuffer{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples
func (b AudioBuffer) Len() int {
	return len(b.Samples)
}

// Duration returns the playback length of the buffer
func (b AudioBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// IsEmpty reports whether the buffer holds no samples
func (b AudioBuffer) IsEmpty() bool {
	return len(b.Samples) == 0
}

// SamplesFor returns how many samples a recording of d lasts at sampleRate.
func SamplesFor(d time.Duration, sampleRate int) int {
	return int(d.Seconds() * float64(sampleRate))
}
