package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAILLM adapter
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// OpenAILLM implements LargeLanguageModel with the chat completions API
type OpenAILLM struct {
	client          openai.Client
	model           string
	maxOutputTokens int
	logger          *zap.Logger
}

var _ repositories.LargeLanguageModel = (*OpenAILLM)(nil)

// NewOpenAIConfigFromEnv reads OPENAI_API_KEY, OPENAI_BASE_URL and LLM_MODEL
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("LLM_MODEL"),
	}
}

// NewOpenAILLM creates a chat completions client
func NewOpenAILLM(config OpenAIConfig, logger *zap.Logger) (*OpenAILLM, error) {
	if config.APIKey == "" {
		return nil, entities.NewConfigurationError("OPENAI_API_KEY", "OpenAI API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
	}

	return &OpenAILLM{
		client:          openai.NewClient(opts...),
		model:           model,
		maxOutputTokens: maxOutputTokens,
		logger:          logger,
	}, nil
}

// Generate sends the context turns followed by the prompt
func (o *OpenAILLM) Generate(ctx context.Context, request repositories.GenerateRequest) (repositories.Generation, error) {
	model := request.Model
	if model == "" {
		model = o.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Context)+1)
	for _, turn := range request.Context {
		if turn.Role == entities.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openai.UserMessage(turn.Text))
		}
	}
	messages = append(messages, openai.UserMessage(request.Prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               model,
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(o.maxOutputTokens)),
	})
	if err != nil {
		return repositories.Generation{}, fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return repositories.Generation{}, fmt.Errorf("model %s returned no choices", model)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return repositories.Generation{}, fmt.Errorf("model %s returned no text", model)
	}

	return repositories.Generation{Text: text, TokenCount: int(resp.Usage.CompletionTokens)}, nil
}

// ListModels returns the model ids visible to the API key
func (o *OpenAILLM) ListModels(ctx context.Context) ([]string, error) {
	iter := o.client.Models.ListAutoPaging(ctx)

	var names []string
	for iter.Next() {
		names = append(names, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return names, nil
}
