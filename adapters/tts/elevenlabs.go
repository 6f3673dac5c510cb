package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "JBFqnCBsd6RMkjVDRZzb" // George voice
	defaultChunkSize    = 1024                   // Size of audio chunks to stream
	defaultOutputFormat = "mp3_44100_128"        // MP3 playable by any downstream player
	defaultModelID      = "eleven_flash_v2_5"    // Low-latency multilingual model
	defaultStability    = 0.5                    // Default voice stability
	defaultClarity      = 0.75                   // Default voice clarity/similarity_boost
	defaultTimeout      = 60 * time.Second
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
// - VoiceID: The voice ID to use (default: "JBFqnCBsd6RMkjVDRZzb" - George voice)
// - ModelID: The model ID to use (default: "eleven_flash_v2_5")
// - OutputFormat: The output format (default: "mp3_44100_128")
// - ChunkSize: The size of audio chunks to stream (default: 1024)
// - Stability: Voice stability value between 0 and 1 (default: 0.5)
// - Clarity: Voice clarity/similarity boost value between 0 and 1 (default: 0.75)
type ElevenLabsConfig struct {
	APIKey       string
	APIBaseURL   string
	VoiceID      string
	ModelID      string
	OutputFormat string
	ChunkSize    int
	Stability    float64
	Clarity      float64
}

// ElevenLabsTTS implements TextToSpeech interface using Eleven Labs API
type ElevenLabsTTS struct {
	apiKey       string
	apiBaseURL   string
	voiceID      string
	modelID      string
	outputFormat string
	chunkSize    int
	stability    float64
	clarity      float64
	httpClient   *http.Client
	logger       *zap.Logger
}

// Ensure ElevenLabsTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*ElevenLabsTTS)(nil)

// ElevenLabsVoiceSettings represents voice settings for Eleven Labs API
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsRequest represents the request payload for Eleven Labs TTS API
type ElevenLabsRequest struct {
	Text                   string                  `json:"text"`
	ModelID                string                  `json:"model_id"`
	VoiceSettings          ElevenLabsVoiceSettings `json:"voice_settings"`
	ApplyTextNormalization string                  `json:"apply_text_normalization,omitempty"`
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return entities.NewConfigurationError("ELEVENLABS_API_KEY", "eleven labs API key is required")
	}

	// Validate stability is in the valid range
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}

	// Validate clarity is in the valid range
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}

	if config.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}

	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
		logger.Info("Using default voice ID", zap.String("voiceID", voiceID))
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
		logger.Info("Using default model ID", zap.String("modelID", modelID))
	}

	outputFormat := config.OutputFormat
	if outputFormat == "" {
		outputFormat = defaultOutputFormat
		logger.Info("Using default output format", zap.String("outputFormat", outputFormat))
	}

	chunkSize := config.ChunkSize
	if chunkSize == 0 {
		chunkSize = defaultChunkSize
	}

	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
	}

	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
	}

	return &ElevenLabsTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   strings.TrimRight(apiBaseURL, "/"),
		voiceID:      voiceID,
		modelID:      modelID,
		outputFormat: outputFormat,
		chunkSize:    chunkSize,
		stability:    stability,
		clarity:      clarity,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logger,
	}, nil
}

// Convert synthesizes the whole utterance in one call and returns the encoded audio
func (e *ElevenLabsTTS) Convert(ctx context.Context, request entities.SynthesisRequest) ([]byte, error) {
	resp, err := e.post(ctx, "", request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio payload: %w", err)
	}

	e.logger.Info("Received synthesized audio", zap.Int("bytes", len(audio)))
	return audio, nil
}

// Stream starts incremental synthesis. Chunks are read from the response body
// on demand, so a consumer that stops pulling and closes the stream releases
// the connection.
func (e *ElevenLabsTTS) Stream(ctx context.Context, request entities.SynthesisRequest) (repositories.AudioStream, error) {
	resp, err := e.post(ctx, "/stream", request)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Streaming synthesized audio",
		zap.String("contentType", resp.Header.Get("Content-Type")))

	return &httpAudioStream{
		body:   resp.Body,
		buffer: make([]byte, e.chunkSize),
		logger: e.logger,
	}, nil
}

func (e *ElevenLabsTTS) post(ctx context.Context, suffix string, request entities.SynthesisRequest) (*http.Response, error) {
	if strings.TrimSpace(request.Text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voiceID := firstNonEmpty(request.VoiceID, e.voiceID)
	modelID := firstNonEmpty(request.ModelID, e.modelID)
	outputFormat := firstNonEmpty(request.OutputFormat, e.outputFormat)

	e.logger.Info("Converting text to speech",
		zap.Int("textLength", len(request.Text)),
		zap.String("voiceID", voiceID),
		zap.String("modelID", modelID),
		zap.String("outputFormat", outputFormat))

	payload := ElevenLabsRequest{
		Text:                   request.Text,
		ModelID:                modelID,
		ApplyTextNormalization: "auto",
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
			UseSpeakerBoost: true,
		},
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s%s?output_format=%s",
		e.apiBaseURL, voiceID, suffix, outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	// PCM output requires the audio/pcm accept header
	acceptHeader := "audio/mpeg"
	if strings.HasPrefix(outputFormat, "pcm") {
		acceptHeader = "audio/pcm"
	}
	httpReq.Header.Set("Accept", acceptHeader)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	return resp, nil
}

// ListVoices retrieves available voices from Eleven Labs API
func (e *ElevenLabsTTS) ListVoices(ctx context.Context) ([]entities.Voice, error) {
	var voicesResponse struct {
		Voices []entities.Voice `json:"voices"`
	}

	if err := e.getJSON(ctx, "/voices", &voicesResponse); err != nil {
		return nil, err
	}

	e.logger.Info("Retrieved available voices", zap.Int("count", len(voicesResponse.Voices)))
	return voicesResponse.Voices, nil
}

// ListModels retrieves available synthesis models from Eleven Labs API
func (e *ElevenLabsTTS) ListModels(ctx context.Context) ([]entities.SynthesisModel, error) {
	var models []entities.SynthesisModel
	if err := e.getJSON(ctx, "/models", &models); err != nil {
		return nil, err
	}

	e.logger.Info("Retrieved available models", zap.Int("count", len(models)))
	return models, nil
}

func (e *ElevenLabsTTS) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(errorBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// SetVoiceSettings allows customization of voice parameters
func (e *ElevenLabsTTS) SetVoiceSettings(stability, clarity float64) {
	e.stability = stability
	e.clarity = clarity
	e.logger.Info("Updated voice settings",
		zap.Float64("stability", stability),
		zap.Float64("clarity", clarity))
}

// NewElevenLabsConfigFromEnv creates a new ElevenLabsConfig from environment variables
func NewElevenLabsConfigFromEnv() ElevenLabsConfig {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("ELEVEN_LABS_API_KEY")
	}

	config := ElevenLabsConfig{
		APIKey:       apiKey,
		APIBaseURL:   os.Getenv("ELEVENLABS_API_BASE_URL"),
		VoiceID:      os.Getenv("ELEVENLABS_VOICE_ID"),
		ModelID:      os.Getenv("ELEVENLABS_MODEL_ID"),
		OutputFormat: os.Getenv("ELEVENLABS_OUTPUT_FORMAT"),
	}

	if chunkSizeStr := os.Getenv("ELEVENLABS_CHUNK_SIZE"); chunkSizeStr != "" {
		if chunkSize, err := strconv.Atoi(chunkSizeStr); err == nil && chunkSize > 0 {
			config.ChunkSize = chunkSize
		}
	}

	if stabilityStr := os.Getenv("ELEVENLABS_STABILITY"); stabilityStr != "" {
		if stability, err := strconv.ParseFloat(stabilityStr, 64); err == nil && stability >= 0 && stability <= 1 {
			config.Stability = stability
		}
	}

	if clarityStr := os.Getenv("ELEVENLABS_CLARITY"); clarityStr != "" {
		if clarity, err := strconv.ParseFloat(clarityStr, 64); err == nil && clarity >= 0 && clarity <= 1 {
			config.Clarity = clarity
		}
	}

	return config
}

// httpAudioStream pulls chunks straight from a streaming response body
type httpAudioStream struct {
	body   io.ReadCloser
	buffer []byte
	logger *zap.Logger

	chunks     int
	totalBytes int
	done       bool
	closeOnce  sync.Once
}

func (s *httpAudioStream) Next() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		n, err := s.body.Read(s.buffer)
		if n > 0 {
			s.chunks++
			s.totalBytes += n
			chunk := make([]byte, n)
			copy(chunk, s.buffer[:n])
			if errors.Is(err, io.EOF) {
				s.finish()
			}
			return chunk, nil
		}

		if errors.Is(err, io.EOF) {
			s.finish()
			return nil, io.EOF
		}

		if err != nil {
			s.done = true
			return nil, fmt.Errorf("error reading audio stream: %w", err)
		}
	}
}

func (s *httpAudioStream) finish() {
	if !s.done {
		s.done = true
		s.logger.Info("Finished streaming audio data",
			zap.Int("totalChunks", s.chunks),
			zap.Int("totalBytes", s.totalBytes))
	}
}

func (s *httpAudioStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.done = true
		err = s.body.Close()
	})
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
