package stt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/repositories"
)

const defaultWhisperModel = "whisper-1"

// WhisperConfig holds configuration for the WhisperSpeechToText adapter
// Required fields:
// - APIKey: OpenAI API key
// Optional fields with defaults:
// - BaseURL: API base URL, for OpenAI compatible servers (default: OpenAI)
// - Model: transcription model (default: "whisper-1")
// - SizeHint: local model size name kept for parity with on-device setups ("base", "small", ...)
type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	SizeHint string
}

// WhisperSpeechToText implements SpeechToText with the OpenAI transcription API
type WhisperSpeechToText struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*WhisperSpeechToText)(nil)

// ValidateWhisperConfig validates the WhisperConfig
func ValidateWhisperConfig(config WhisperConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}
	return nil
}

// NewWhisperConfigFromEnv reads OPENAI_API_KEY, OPENAI_BASE_URL and WHISPER_MODEL
func NewWhisperConfigFromEnv() WhisperConfig {
	return WhisperConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("WHISPER_MODEL"),
	}
}

// NewWhisperSpeechToText creates a new Whisper transcription adapter
func NewWhisperSpeechToText(config WhisperConfig, logger *zap.Logger) (*WhisperSpeechToText, error) {
	if err := ValidateWhisperConfig(config); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
		logger.Info("Using custom transcription base URL", zap.String("baseURL", config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultWhisperModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}

	if config.SizeHint != "" {
		logger.Info("Whisper size hint ignored by hosted model", zap.String("sizeHint", config.SizeHint))
	}

	return &WhisperSpeechToText{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// TranscribeAudio uploads a WAV payload for transcription
func (w *WhisperSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audioData), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(w.model),
	}
	if config.Language != "" {
		params.Language = openai.String(config.Language)
	}

	w.logger.Debug("Sending transcription request",
		zap.Int("bytes", len(audioData)),
		zap.String("model", w.model),
		zap.String("language", config.Language))

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
