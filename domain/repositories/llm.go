package repositories

import (
	"context"

	"github.com/satriahrh/suara/domain/entities"
)

// LargeLanguageModel abstracts text generation services
type LargeLanguageModel interface {
	// Generate produces a completion for the prompt preceded by the given context turns
	Generate(ctx context.Context, request GenerateRequest) (Generation, error)
	// ListModels returns the identifiers of models available to the client
	ListModels(ctx context.Context) ([]string, error)
}

// GenerateRequest is one generation call
type GenerateRequest struct {
	// Model overrides the adapter's configured model when set
	Model   string
	Context []entities.ConversationTurn
	Prompt  string
}

// Generation is the text returned by the model
type Generation struct {
	Text       string
	TokenCount int
}
