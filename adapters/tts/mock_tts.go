package tts

import (
	"context"
	"io"
	"sync"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// MockTextToSpeech returns Audio for every request, split into ChunkSize pieces
// when streamed. ConvertErr and StreamErr force failures.
type MockTextToSpeech struct {
	Audio      []byte
	ChunkSize  int
	ConvertErr error
	StreamErr  error

	mu       sync.Mutex
	requests []entities.SynthesisRequest
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a mock returning a short fake MP3 frame sequence
func NewMockTextToSpeech() *MockTextToSpeech {
	return &MockTextToSpeech{
		Audio:     []byte("ID3\x03\x00\x00\x00\x00\x00\x00mock-audio-frames"),
		ChunkSize: 8,
	}
}

// Convert returns the whole payload
func (m *MockTextToSpeech) Convert(ctx context.Context, request entities.SynthesisRequest) ([]byte, error) {
	m.record(request)
	if m.ConvertErr != nil {
		return nil, m.ConvertErr
	}
	out := make([]byte, len(m.Audio))
	copy(out, m.Audio)
	return out, nil
}

// Stream returns the payload in chunks
func (m *MockTextToSpeech) Stream(ctx context.Context, request entities.SynthesisRequest) (repositories.AudioStream, error) {
	m.record(request)
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	size := m.ChunkSize
	if size <= 0 {
		size = len(m.Audio)
	}
	return &sliceStream{data: m.Audio, size: size}, nil
}

// ListVoices returns a single fake voice
func (m *MockTextToSpeech) ListVoices(ctx context.Context) ([]entities.Voice, error) {
	return []entities.Voice{{VoiceID: defaultVoiceID, Name: "George"}}, nil
}

// ListModels returns a single fake model
func (m *MockTextToSpeech) ListModels(ctx context.Context) ([]entities.SynthesisModel, error) {
	return []entities.SynthesisModel{{ModelID: defaultModelID, Name: "Eleven Flash v2.5"}}, nil
}

// Requests returns every request received
func (m *MockTextToSpeech) Requests() []entities.SynthesisRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.SynthesisRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockTextToSpeech) record(request entities.SynthesisRequest) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()
}

type sliceStream struct {
	data   []byte
	size   int
	offset int
	closed bool
}

func (s *sliceStream) Next() ([]byte, error) {
	if s.closed || s.offset >= len(s.data) {
		return nil, io.EOF
	}
	end := s.offset + s.size
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.offset:end]
	s.offset = end
	return chunk, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}
