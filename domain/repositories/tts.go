package repositories

import (
	"context"

	"github.com/satriahrh/suara/domain/entities"
)

// TextToSpeech abstracts text-to-speech services
type TextToSpeech interface {
	// Convert returns the complete encoded audio for the request
	Convert(ctx context.Context, request entities.SynthesisRequest) ([]byte, error)
	// Stream starts incremental synthesis; the caller must Close the stream
	Stream(ctx context.Context, request entities.SynthesisRequest) (AudioStream, error)
	ListVoices(ctx context.Context) ([]entities.Voice, error)
	ListModels(ctx context.Context) ([]entities.SynthesisModel, error)
}

// AudioStream is a finite, single-consumer sequence of audio chunks.
// Next returns io.EOF after the last chunk.
type AudioStream interface {
	Next() ([]byte, error)
	Close() error
}
