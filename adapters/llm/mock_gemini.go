package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/satriahrh/suara/domain/repositories"
)

// MockLLM echoes prompts back and records every request.
// GenerateFunc, when set, replaces the echo behavior.
type MockLLM struct {
	GenerateFunc func(ctx context.Context, request repositories.GenerateRequest) (repositories.Generation, error)

	mu       sync.Mutex
	requests []repositories.GenerateRequest
}

var _ repositories.LargeLanguageModel = (*MockLLM)(nil)

// NewMockLLM creates a new mock language model
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Generate records the request and returns a canned reply
func (m *MockLLM) Generate(ctx context.Context, request repositories.GenerateRequest) (repositories.Generation, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, request)
	}

	text := fmt.Sprintf("'%s' 라고 말씀하셨네요. 더 이야기해 주세요!", request.Prompt)
	return repositories.Generation{Text: text, TokenCount: len(strings.Fields(text))}, nil
}

// ListModels returns a fixed model list
func (m *MockLLM) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model"}, nil
}

// Requests returns a copy of every request received
func (m *MockLLM) Requests() []repositories.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repositories.GenerateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
