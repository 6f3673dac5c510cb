package entities

import (
	"errors"
	"testing"
	"time"
)

func TestSessionCreation(t *testing.T) {
	settings := SessionSettings{Language: "ko", LLMModel: "gemma-3-27b-it"}
	session := NewSession(SessionModeInteractive, settings)

	if session.ID == "" {
		t.Error("Expected session ID to be generated")
	}

	if session.Status != SessionStatusActive {
		t.Errorf("Expected status %s, got %s", SessionStatusActive, session.Status)
	}

	if session.Mode != SessionModeInteractive {
		t.Errorf("Expected mode %s, got %s", SessionModeInteractive, session.Mode)
	}

	if session.Settings.Language != "ko" {
		t.Errorf("Expected language ko, got %s", session.Settings.Language)
	}

	if session.EndedAt != nil {
		t.Error("Expected EndedAt to be nil for a new session")
	}
}

func TestSessionEnd(t *testing.T) {
	session := NewSession(SessionModeFile, SessionSettings{})
	session.End()

	if session.IsActive() {
		t.Error("Expected session to be inactive after End")
	}

	if session.EndedAt == nil {
		t.Fatal("Expected EndedAt to be set")
	}

	if err := session.Validate(); err != nil {
		t.Errorf("Expected ended session to validate, got %v", err)
	}
}

func TestSessionValidation(t *testing.T) {
	session := NewSession(SessionModeServer, SessionSettings{})
	if err := session.Validate(); err != nil {
		t.Errorf("Expected valid session, got error: %v", err)
	}

	session.ID = ""
	if err := session.Validate(); err == nil {
		t.Error("Expected validation error for empty ID")
	}

	session = NewSession(SessionModeServer, SessionSettings{})
	session.Status = "invalid"
	if err := session.Validate(); err == nil {
		t.Error("Expected validation error for invalid status")
	}

	session = NewSession(SessionModeServer, SessionSettings{})
	before := session.StartedAt.Add(-time.Minute)
	session.EndedAt = &before
	if err := session.Validate(); err == nil {
		t.Error("Expected validation error for ended_at before started_at")
	}
}

func TestTurnOutcomeDelivered(t *testing.T) {
	delivered := map[TurnOutcome]bool{
		OutcomeCompleted:          true,
		OutcomeSynthesisFailed:    true,
		OutcomeGenerationFailed:   false,
		OutcomeTranscriptionEmpty: false,
		OutcomeCaptureFailed:      false,
		OutcomeDeviceUnavailable:  false,
	}

	for outcome, expected := range delivered {
		if outcome.Delivered() != expected {
			t.Errorf("Expected %s delivered=%v, got %v", outcome, expected, outcome.Delivered())
		}
	}
}

func TestConfigurationErrorUnwrap(t *testing.T) {
	err := NewConfigurationError("ELEVENLABS_API_KEY", "is required")

	if !errors.Is(err, ErrConfiguration) {
		t.Error("Expected configuration error to match ErrConfiguration")
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatal("Expected errors.As to find *ConfigurationError")
	}

	if cfgErr.Key != "ELEVENLABS_API_KEY" {
		t.Errorf("Expected key ELEVENLABS_API_KEY, got %s", cfgErr.Key)
	}
}
