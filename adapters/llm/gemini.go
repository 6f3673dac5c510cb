package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const (
	defaultModel          = "gemma-3-27b-it"
	defaultTemperature    = 0.7
	defaultMaxTokens      = 200
	defaultTimeoutSeconds = 30
	defaultMaxRetries     = 3
)

// GeminiConfig holds configuration for the GeminiLLM adapter
// Required fields:
// - APIKey: Google AI API key
// Optional fields with defaults:
// - Model: model name (default: "gemma-3-27b-it")
// - Temperature: sampling temperature between 0 and 2 (default: 0.7)
// - MaxOutputTokens: reply length cap (default: 200)
// - TimeoutSeconds: per-call deadline (default: 30)
// - MaxRetries: attempts per call (default: 3)
// - SystemPrompt: sent as the first user content; Gemma models reject system instructions
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	TimeoutSeconds  int
	MaxRetries      int
	SystemPrompt    string
}

// GeminiLLM implements the LargeLanguageModel interface using the Gemini API
type GeminiLLM struct {
	client          *genai.Client
	logger          *zap.Logger
	model           string
	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	maxRetries      int
	retryDelay      time.Duration
	systemPrompt    string
}

var _ repositories.LargeLanguageModel = (*GeminiLLM)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return entities.NewConfigurationError("GOOGLE_API_KEY", "Google AI API key is required")
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must be positive, got %d", config.MaxOutputTokens)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewGeminiConfigFromEnv reads GOOGLE_API_KEY (or GEMINI_API_KEY) and LLM_MODEL
func NewGeminiConfigFromEnv() GeminiConfig {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return GeminiConfig{
		APIKey: apiKey,
		Model:  os.Getenv("LLM_MODEL"),
	}
}

// NewGeminiLLM creates a new Gemini LLM instance
func NewGeminiLLM(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiLLM, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens == 0 {
		maxOutputTokens = defaultMaxTokens
		logger.Info("Using default maxOutputTokens", zap.Int("maxOutputTokens", maxOutputTokens))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &GeminiLLM{
		client:          client,
		logger:          logger,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
		timeout:         time.Duration(timeoutSeconds) * time.Second,
		maxRetries:      maxRetries,
		retryDelay:      time.Second,
		systemPrompt:    config.SystemPrompt,
	}, nil
}

// Generate sends the context turns followed by the prompt and returns the model's text
func (g *GeminiLLM) Generate(ctx context.Context, request repositories.GenerateRequest) (repositories.Generation, error) {
	model := request.Model
	if model == "" {
		model = g.model
	}

	contents := buildContents(g.systemPrompt, request.Context, request.Prompt)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: int32(g.maxOutputTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var response *genai.GenerateContentResponse
	var err error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		response, err = g.client.Models.GenerateContent(ctx, model, contents, config)
		if err == nil {
			break
		}

		g.logger.Warn("Failed to generate content, retrying",
			zap.String("model", model),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt < g.maxRetries-1 {
			select {
			case <-ctx.Done():
				return repositories.Generation{}, fmt.Errorf("generation cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt+1) * g.retryDelay):
			}
		}
	}

	if err != nil {
		return repositories.Generation{}, fmt.Errorf("failed to generate content with %s: %w", model, err)
	}

	text := responseText(response)
	if text == "" {
		return repositories.Generation{}, fmt.Errorf("model %s returned no text", model)
	}

	tokenCount := len(strings.Fields(text))
	if response.UsageMetadata != nil && response.UsageMetadata.CandidatesTokenCount > 0 {
		tokenCount = int(response.UsageMetadata.CandidatesTokenCount)
	}

	return repositories.Generation{Text: text, TokenCount: tokenCount}, nil
}

// ListModels returns the names of models visible to the API key
func (g *GeminiLLM) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for model, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		names = append(names, model.Name)
	}
	return names, nil
}

// buildContents converts turns to Gemini contents, prompt last
func buildContents(systemPrompt string, turns []entities.ConversationTurn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns)+2)

	if systemPrompt != "" {
		contents = append(contents, genai.NewContentFromText(systemPrompt, genai.RoleUser))
	}

	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == entities.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}

	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

// responseText concatenates the text parts of the first candidate
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
