// Package config loads session and server settings from defaults, an optional
// YAML file, the environment (including a .env file) and CLI flags, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/satriahrh/suara/domain/entities"
)

// Providers
const (
	ProviderWhisper    = "whisper"
	ProviderGoogle     = "google"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
	ProviderMock       = "mock"
)

// Config is the full application configuration
type Config struct {
	STTProvider string `yaml:"stt_provider"`
	STTModel    string `yaml:"stt_model"`
	Language    string `yaml:"language"`

	LLMProvider     string  `yaml:"llm_provider"`
	LLMModel        string  `yaml:"llm_model"`
	MaxHistoryPairs int     `yaml:"max_history_pairs"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`

	TTSProvider     string `yaml:"tts_provider"`
	TTSVoiceID      string `yaml:"tts_voice_id"`
	TTSModel        string `yaml:"tts_model"`
	TTSMode         string `yaml:"tts_mode"`
	TTSOutputFormat string `yaml:"tts_output_format"`

	RecordingDuration float64 `yaml:"recording_duration"`
	SaveRecordings    bool    `yaml:"save_recordings"`
	RecordingsDir     string  `yaml:"recordings_dir"`
	OutputDir         string  `yaml:"output_dir"`
	Player            string  `yaml:"player"`
	Verbose           bool    `yaml:"verbose"`

	Server      ServerConfig      `yaml:"server"`
	Credentials CredentialsConfig `yaml:"-"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Port          string   `yaml:"port"`
	JWTSecret     string   `yaml:"-"`
	ClientSecret  string   `yaml:"-"`
	MongoURI      string   `yaml:"mongodb_uri"`
	MongoDatabase string   `yaml:"mongodb_database"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`
}

// CredentialsConfig holds secrets; they are only read from the environment
type CredentialsConfig struct {
	GoogleAPIKey          string
	ElevenLabsAPIKey      string
	OpenAIAPIKey          string
	GoogleCredentialsFile string
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		STTProvider:       ProviderWhisper,
		STTModel:          "base",
		Language:          "ko",
		LLMProvider:       ProviderGemini,
		LLMModel:          "gemma-3-27b-it",
		MaxHistoryPairs:   entities.DefaultMaxHistoryPairs,
		MaxOutputTokens:   200,
		Temperature:       0.7,
		TTSProvider:       ProviderElevenLabs,
		TTSVoiceID:        "JBFqnCBsd6RMkjVDRZzb",
		TTSModel:          "eleven_flash_v2_5",
		TTSMode:           string(entities.SynthesisBuffered),
		TTSOutputFormat:   "mp3_44100_128",
		RecordingDuration: 5.0,
		SaveRecordings:    true,
		RecordingsDir:     "recordings",
		OutputDir:         "output",
		Player:            "ffplay",
		Verbose:           true,
		Server: ServerConfig{
			Port:       "8080",
			KafkaTopic: "suara.turns",
		},
	}
}

// Load reads .env (if present), then path (if set), then the environment
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, entities.NewConfigurationError(path, err.Error())
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.STTProvider, "STT_PROVIDER")
	setString(&c.STTModel, "STT_MODEL")
	setString(&c.Language, "SPEECH_LANGUAGE")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.LLMModel, "LLM_MODEL")
	setString(&c.TTSProvider, "TTS_PROVIDER")
	setString(&c.TTSVoiceID, "ELEVENLABS_VOICE_ID")
	setString(&c.TTSModel, "ELEVENLABS_MODEL_ID")
	setString(&c.TTSMode, "TTS_MODE")
	setString(&c.TTSOutputFormat, "ELEVENLABS_OUTPUT_FORMAT")
	setString(&c.RecordingsDir, "RECORDINGS_DIR")
	setString(&c.OutputDir, "OUTPUT_DIR")
	setString(&c.Player, "AUDIO_PLAYER")

	setString(&c.Server.Port, "PORT")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.ClientSecret, "CLIENT_SECRET")
	setString(&c.Server.MongoURI, "MONGODB_URI")
	setString(&c.Server.MongoDatabase, "MONGODB_DATABASE")
	setString(&c.Server.KafkaTopic, "KAFKA_TOPIC")
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Server.KafkaBrokers = splitList(brokers)
	}

	c.Credentials.GoogleAPIKey = firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY")
	c.Credentials.ElevenLabsAPIKey = firstEnv("ELEVENLABS_API_KEY", "ELEVEN_LABS_API_KEY")
	c.Credentials.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.Credentials.GoogleCredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	if err := setFloat(&c.RecordingDuration, "RECORDING_DURATION"); err != nil {
		return err
	}
	if err := setFloat(&c.Temperature, "TEMPERATURE"); err != nil {
		return err
	}
	if err := setInt(&c.MaxHistoryPairs, "MAX_HISTORY_PAIRS"); err != nil {
		return err
	}
	if err := setInt(&c.MaxOutputTokens, "MAX_OUTPUT_TOKENS"); err != nil {
		return err
	}
	if err := setBool(&c.SaveRecordings, "SAVE_RECORDINGS"); err != nil {
		return err
	}
	return setBool(&c.Verbose, "VERBOSE")
}

// Validate checks option ranges and that every selected provider has its credential
func (c Config) Validate() error {
	if c.RecordingDuration <= 0 {
		return entities.NewConfigurationError("recording_duration", "must be positive")
	}
	if c.MaxHistoryPairs <= 0 {
		return entities.NewConfigurationError("max_history_pairs", "must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return entities.NewConfigurationError("temperature", "must be between 0 and 2")
	}
	if c.TTSMode != string(entities.SynthesisBuffered) && c.TTSMode != string(entities.SynthesisStreamed) {
		return entities.NewConfigurationError("tts_mode", fmt.Sprintf("unknown mode %q", c.TTSMode))
	}

	switch c.STTProvider {
	case ProviderWhisper:
		if c.Credentials.OpenAIAPIKey == "" {
			return entities.NewConfigurationError("OPENAI_API_KEY", "required for the whisper speech provider")
		}
	case ProviderGoogle, ProviderMock:
	default:
		return entities.NewConfigurationError("stt_provider", fmt.Sprintf("unknown provider %q", c.STTProvider))
	}

	if err := c.ValidateLLM(); err != nil {
		return err
	}

	switch c.TTSProvider {
	case ProviderElevenLabs:
		if c.Credentials.ElevenLabsAPIKey == "" {
			return entities.NewConfigurationError("ELEVENLABS_API_KEY", "required for speech synthesis")
		}
	case ProviderMock:
	default:
		return entities.NewConfigurationError("tts_provider", fmt.Sprintf("unknown provider %q", c.TTSProvider))
	}

	return nil
}

// ValidateLLM checks only the language model settings, for commands that need nothing else
func (c Config) ValidateLLM() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.Credentials.GoogleAPIKey == "" {
			return entities.NewConfigurationError("GOOGLE_API_KEY", "required for the gemini language model")
		}
	case ProviderOpenAI:
		if c.Credentials.OpenAIAPIKey == "" {
			return entities.NewConfigurationError("OPENAI_API_KEY", "required for the openai language model")
		}
	case ProviderMock:
	default:
		return entities.NewConfigurationError("llm_provider", fmt.Sprintf("unknown provider %q", c.LLMProvider))
	}
	return nil
}

// ValidateServer checks the settings the serve command needs on top of Validate
func (c Config) ValidateServer() error {
	if c.Server.JWTSecret == "" {
		return entities.NewConfigurationError("JWT_SECRET", "required to issue API tokens")
	}
	if c.Server.ClientSecret == "" {
		return entities.NewConfigurationError("CLIENT_SECRET", "required to authenticate API clients")
	}
	return nil
}

// Duration returns the recording duration
func (c Config) Duration() time.Duration {
	return time.Duration(c.RecordingDuration * float64(time.Second))
}

// SynthesisMode returns the parsed synthesis mode
func (c Config) SynthesisMode() entities.SynthesisMode {
	return entities.ParseSynthesisMode(c.TTSMode)
}

// Settings snapshots the session options
func (c Config) Settings() entities.SessionSettings {
	return entities.SessionSettings{
		STTProvider:       c.STTProvider,
		STTModel:          c.STTModel,
		Language:          c.Language,
		LLMProvider:       c.LLMProvider,
		LLMModel:          c.LLMModel,
		TTSVoiceID:        c.TTSVoiceID,
		TTSModel:          c.TTSModel,
		TTSMode:           c.TTSMode,
		RecordingDuration: c.RecordingDuration,
		SaveRecordings:    c.SaveRecordings,
		MaxHistoryPairs:   c.MaxHistoryPairs,
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return entities.NewConfigurationError(key, fmt.Sprintf("invalid number %q", v))
	}
	*dst = f
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return entities.NewConfigurationError(key, fmt.Sprintf("invalid integer %q", v))
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return entities.NewConfigurationError(key, fmt.Sprintf("invalid boolean %q", v))
	}
	*dst = b
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
