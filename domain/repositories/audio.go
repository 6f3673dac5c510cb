package repositories

import (
	"context"
	"time"

	"github.com/satriahrh/suara/domain/entities"
)

// AudioPlatform abstracts the host audio subsystem
type AudioPlatform interface {
	// Devices enumerates audio devices in platform declaration order
	Devices(ctx context.Context) ([]entities.Device, error)
	// Record blocks for duration and returns mono samples captured from device at sampleRate
	Record(ctx context.Context, device entities.Device, duration time.Duration, sampleRate int) ([]float32, error)
}

// AudioPlayer plays encoded audio (MP3 or WAV) on the local output
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte) error
	// Stream opens a sink that plays chunks as they are written
	Stream(ctx context.Context) (AudioSink, error)
}

// AudioSink consumes a chunked audio stream; Close flushes and releases it
type AudioSink interface {
	Write(chunk []byte) (int, error)
	Close() error
}

// AudioCodec converts between buffers and the WAV container
type AudioCodec interface {
	Encode(buffer entities.AudioBuffer) ([]byte, error)
	// Load reads a file and normalizes it to mono at sampleRate
	Load(path string, sampleRate int) (entities.AudioBuffer, error)
	Save(path string, buffer entities.AudioBuffer) (string, error)
}

// AudioStore persists synthesized audio
type AudioStore interface {
	WriteFile(path string, audio []byte) error
	Create(path string) (AudioSink, error)
}
