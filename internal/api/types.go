package api

import (
	"time"

	"github.com/satriahrh/suara/domain/entities"
)

// TokenRequest exchanges the shared client secret for a bearer token
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse represents the response payload for token issuance
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
}

// TurnResponse is the outcome of one uploaded utterance
type TurnResponse struct {
	Record     entities.TurnRecord `json:"record"`
	Transcript entities.Transcript `json:"transcript"`
	Reply      entities.Reply      `json:"reply"`
	// Audio is the synthesized reply, base64 encoded in JSON
	Audio []byte `json:"audio,omitempty"`
	Error string `json:"error,omitempty"`
}

// HistoryResponse lists the conversation memory, oldest first
type HistoryResponse struct {
	SessionID string                      `json:"session_id"`
	Turns     []entities.ConversationTurn `json:"turns"`
}

// TurnsResponse lists stored turn records, newest first
type TurnsResponse struct {
	SessionID string                 `json:"session_id"`
	Turns     []*entities.TurnRecord `json:"turns"`
}

// ContentRequest asks for a piece of marketing copy
type ContentRequest struct {
	Type    string                   `json:"type"`
	Profile entities.BusinessProfile `json:"profile"`
}

// ContentResponse is generated copy plus its hashtags and keywords
type ContentResponse struct {
	Content  entities.MarketingContent `json:"content"`
	Hashtags []string                  `json:"hashtags"`
	Keywords []string                  `json:"keywords"`
}

// BenchmarkRequest selects the model and prompt to measure
type BenchmarkRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// VoicesResponse lists the synthesis voices and models
type VoicesResponse struct {
	Voices []entities.Voice          `json:"voices"`
	Models []entities.SynthesisModel `json:"models,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
