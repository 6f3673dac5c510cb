package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

var errBlankGeneration = errors.New("language model returned no text")

// ResponseService generates replies and owns the conversation history
type ResponseService struct {
	llm    repositories.LargeLanguageModel
	model  string
	logger *zap.Logger

	mu      sync.Mutex
	history *entities.ConversationHistory
}

// NewResponseService creates a response service keeping at most maxPairs exchanges
func NewResponseService(llm repositories.LargeLanguageModel, model string, maxPairs int, logger *zap.Logger) *ResponseService {
	if maxPairs <= 0 {
		logger.Info("Using default history size", zap.Int("maxPairs", entities.DefaultMaxHistoryPairs))
		maxPairs = entities.DefaultMaxHistoryPairs
	}

	return &ResponseService{
		llm:     llm,
		model:   model,
		logger:  logger,
		history: entities.NewConversationHistory(maxPairs),
	}
}

// Respond answers prompt using the service-owned history. On success the
// (prompt, reply) pair is appended; on failure history is left as it was.
func (s *ResponseService) Respond(ctx context.Context, prompt entities.Transcript) entities.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := s.generate(ctx, prompt.Text, s.history.Turns())
	if reply.Speakable() {
		s.history.AppendPair(prompt.Text, reply.Text)
		s.logger.Debug("Conversation history updated", zap.Int("pairs", s.history.Pairs()))
	}
	return reply
}

// RespondWithContext answers prompt using override as prior turns. History is never touched.
func (s *ResponseService) RespondWithContext(ctx context.Context, prompt entities.Transcript, override []entities.ConversationTurn) entities.Reply {
	return s.generate(ctx, prompt.Text, override)
}

func (s *ResponseService) generate(ctx context.Context, prompt string, turns []entities.ConversationTurn) entities.Reply {
	if prompt == "" {
		return entities.FailedReply(fmt.Errorf("%w: empty prompt", entities.ErrGenerationFailure))
	}

	generation, err := s.llm.Generate(ctx, repositories.GenerateRequest{
		Model:   s.model,
		Context: turns,
		Prompt:  prompt,
	})
	if err != nil {
		s.logger.Warn("Response generation failed", zap.String("model", s.model), zap.Error(err))
		return entities.FailedReply(fmt.Errorf("%w: %w", entities.ErrGenerationFailure, err))
	}

	reply := entities.NewReply(generation.Text, generation.TokenCount)
	if reply.Text == "" {
		s.logger.Warn("Response generation returned blank output", zap.String("model", s.model))
		return entities.FailedReply(fmt.Errorf("%w: %w", entities.ErrGenerationFailure, errBlankGeneration))
	}

	s.logger.Info("Response generated",
		zap.String("model", s.model),
		zap.Int("contextTurns", len(turns)),
		zap.Int("tokens", reply.TokenCount))
	return reply
}

// History returns a chronological copy of the conversation
func (s *ResponseService) History() []entities.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Turns()
}

// ClearHistory forgets every exchange
func (s *ResponseService) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
}

// Model returns the configured language model identifier
func (s *ResponseService) Model() string {
	return s.model
}
