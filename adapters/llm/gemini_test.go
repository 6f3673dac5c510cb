package llm

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

func TestValidateGeminiConfig(t *testing.T) {
	err := ValidateGeminiConfig(GeminiConfig{})
	if !errors.Is(err, entities.ErrConfiguration) {
		t.Errorf("Expected configuration error for missing key, got %v", err)
	}

	if err := ValidateGeminiConfig(GeminiConfig{APIKey: "key", Temperature: 3}); err == nil {
		t.Error("Expected error for temperature out of range")
	}

	if err := ValidateGeminiConfig(GeminiConfig{APIKey: "key", MaxOutputTokens: -1}); err == nil {
		t.Error("Expected error for negative max tokens")
	}

	if err := ValidateGeminiConfig(GeminiConfig{APIKey: "key", Temperature: 0.7}); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestBuildContents(t *testing.T) {
	turns := []entities.ConversationTurn{
		{Role: entities.RoleUser, Text: "Hello"},
		{Role: entities.RoleAssistant, Text: "Hi"},
	}

	contents := buildContents("", turns, "What did I just say?")

	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(contents))
	}

	if contents[1].Role != string(genai.RoleModel) {
		t.Errorf("Expected assistant turn mapped to model role, got %s", contents[1].Role)
	}

	if contents[2].Parts[0].Text != "What did I just say?" {
		t.Errorf("Expected prompt last, got %s", contents[2].Parts[0].Text)
	}
}

func TestBuildContentsWithSystemPrompt(t *testing.T) {
	contents := buildContents("Be brief.", nil, "Hello")

	if len(contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(contents))
	}

	if contents[0].Parts[0].Text != "Be brief." {
		t.Errorf("Expected system prompt first, got %s", contents[0].Parts[0].Text)
	}
}

func TestResponseText(t *testing.T) {
	response := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: "world "}}},
		}},
	}

	if got := responseText(response); got != "Hello world" {
		t.Errorf("Expected 'Hello world', got %q", got)
	}

	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("Expected empty text for no candidates, got %q", got)
	}

	if got := responseText(nil); got != "" {
		t.Errorf("Expected empty text for nil response, got %q", got)
	}
}

func TestMockLLMRecordsRequests(t *testing.T) {
	mock := NewMockLLM()

	gen, err := mock.Generate(context.Background(), repositories.GenerateRequest{Prompt: "Hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gen.Text == "" {
		t.Error("Expected canned text")
	}

	if len(mock.Requests()) != 1 {
		t.Errorf("Expected 1 recorded request, got %d", len(mock.Requests()))
	}
}
