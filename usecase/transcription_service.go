package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const defaultLanguage = "ko"

// AudioInput is either an in-memory buffer or a path to an audio file.
// Buffer takes precedence when both are set.
type AudioInput struct {
	Buffer *entities.AudioBuffer
	Path   string
}

// TranscriptionService wraps a speech-to-text engine behind the audio -> text contract
type TranscriptionService struct {
	engine   repositories.SpeechToText
	codec    repositories.AudioCodec
	language string
	logger   *zap.Logger
}

// NewTranscriptionService creates a transcription service fixed to language
func NewTranscriptionService(engine repositories.SpeechToText, codec repositories.AudioCodec, language string, logger *zap.Logger) *TranscriptionService {
	if language == "" {
		language = defaultLanguage
	}
	return &TranscriptionService{
		engine:   engine,
		codec:    codec,
		language: language,
		logger:   logger,
	}
}

// Transcribe returns the recognized text. The only error is ErrInvalidInput;
// engine and decoding failures are logged and reported as an empty transcript.
func (s *TranscriptionService) Transcribe(ctx context.Context, input AudioInput) (entities.Transcript, error) {
	if input.Buffer == nil && input.Path == "" {
		return entities.Transcript{}, entities.ErrInvalidInput
	}

	var buffer entities.AudioBuffer
	if input.Buffer != nil {
		buffer = *input.Buffer
	} else {
		loaded, err := s.codec.Load(input.Path, entities.TranscriptionSampleRate)
		if err != nil {
			s.logger.Warn("Failed to load audio file", zap.String("path", input.Path), zap.Error(err))
			return entities.EmptyTranscript(s.language), nil
		}
		buffer = loaded
	}

	if buffer.IsEmpty() {
		s.logger.Info("Empty audio buffer, nothing to transcribe")
		return entities.EmptyTranscript(s.language), nil
	}

	payload, err := s.codec.Encode(buffer)
	if err != nil {
		s.logger.Warn("Failed to encode audio for transcription", zap.Error(err))
		return entities.EmptyTranscript(s.language), nil
	}

	text, err := s.engine.TranscribeAudio(ctx, payload, repositories.AudioConfig{
		SampleRate: buffer.SampleRate,
		Encoding:   "LINEAR16",
		Language:   s.language,
	})
	if err != nil {
		s.logger.Warn("Transcription failed", zap.Error(err))
		return entities.EmptyTranscript(s.language), nil
	}

	transcript := entities.NewTranscript(text, s.language)
	if transcript.IsEmpty() {
		s.logger.Info("No speech detected")
	} else {
		s.logger.Info("Transcription completed", zap.String("text", transcript.Text))
	}
	return transcript, nil
}

// Language returns the session language
func (s *TranscriptionService) Language() string {
	return s.language
}
