package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/repositories"
)

// MockSpeechToText returns canned transcripts, cycling through Transcripts.
// TranscribeFunc, when set, replaces the canned behavior.
type MockSpeechToText struct {
	Transcripts    []string
	TranscribeFunc func(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error)

	logger *zap.Logger
	mu     sync.Mutex
	calls  int
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger, transcripts ...string) *MockSpeechToText {
	if len(transcripts) == 0 {
		transcripts = []string{"안녕하세요", "방금 무슨 말을 했지?"}
	}
	return &MockSpeechToText{
		Transcripts: transcripts,
		logger:      logger,
	}
}

// TranscribeAudio returns the next canned transcript
func (m *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	m.mu.Lock()
	call := m.calls
	m.calls++
	m.mu.Unlock()

	m.logger.Info("Mock transcription",
		zap.Int("bytes", len(audioData)),
		zap.String("language", config.Language))

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioData, config)
	}

	if len(m.Transcripts) == 0 {
		return "", nil
	}
	return m.Transcripts[call%len(m.Transcripts)], nil
}

// Calls returns how many times TranscribeAudio ran
func (m *MockSpeechToText) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
