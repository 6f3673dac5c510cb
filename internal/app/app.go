// Package app builds the engines, stores and services a command needs from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/adapters/kafka"
	"github.com/satriahrh/suara/adapters/llm"
	"github.com/satriahrh/suara/adapters/memory"
	"github.com/satriahrh/suara/adapters/mongo"
	"github.com/satriahrh/suara/adapters/playback"
	"github.com/satriahrh/suara/adapters/stt"
	"github.com/satriahrh/suara/adapters/tts"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
	"github.com/satriahrh/suara/internal/config"
	"github.com/satriahrh/suara/internal/metrics"
	"github.com/satriahrh/suara/internal/turn"
	"github.com/satriahrh/suara/usecase"
)

// Options controls what New wires beyond the configuration
type Options struct {
	Mode entities.SessionMode
	// Headless skips the local audio player; replies are saved to the output dir instead
	Headless bool
	// Platform replaces the compiled-in capture backend
	Platform repositories.AudioPlatform
}

// App is a fully wired session
type App struct {
	Config  config.Config
	Session *entities.Session
	Metrics *metrics.Metrics

	Speech   repositories.SpeechToText
	Language repositories.LargeLanguageModel
	Voice    repositories.TextToSpeech
	Platform repositories.AudioPlatform

	Sessions  repositories.SessionRepository
	Turns     repositories.TurnRepository
	Publisher *kafka.TurnPublisher

	Devices       *usecase.DeviceResolver
	Capture       *usecase.CaptureService
	Transcription *usecase.TranscriptionService
	Response      *usecase.ResponseService
	Synthesis     *usecase.SynthesisService
	Content       *usecase.ContentService
	Benchmark     *usecase.BenchmarkService

	Orchestrator *turn.Orchestrator

	mu      sync.Mutex
	closers []func(ctx context.Context) error
	logger  *zap.Logger
}

// New validates cfg and builds every component of a session
func New(ctx context.Context, cfg config.Config, options Options, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if options.Mode == "" {
		options.Mode = entities.SessionModeInteractive
	}

	a := &App{
		Config:  cfg,
		Metrics: metrics.New(),
		logger:  logger,
	}

	if err := a.build(ctx, options); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, options Options) error {
	cfg := a.Config
	var err error

	if a.Speech, err = NewSpeechToText(ctx, cfg, a.logger); err != nil {
		return err
	}
	if closer, ok := a.Speech.(interface{ Close() error }); ok {
		a.onClose(func(context.Context) error { return closer.Close() })
	}

	if a.Language, err = NewLanguageModel(ctx, cfg, a.logger); err != nil {
		return err
	}
	if a.Voice, err = NewTextToSpeech(cfg, a.logger); err != nil {
		return err
	}

	a.Platform = options.Platform
	if a.Platform == nil {
		platform, err := audio.NewDefaultPlatform(a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize audio platform: %w", err)
		}
		a.Platform = platform
		a.onClose(func(context.Context) error { return platform.Close() })
	}

	var player repositories.AudioPlayer
	if !options.Headless {
		commandPlayer, err := playback.NewCommandPlayer(cfg.Player, a.logger)
		if err != nil {
			a.logger.Warn("No audio player available, replies will be saved to files", zap.Error(err))
		} else {
			player = commandPlayer
		}
	}

	if err := a.buildStores(ctx); err != nil {
		return err
	}

	codec := audio.WAVCodec{}
	a.Devices = usecase.NewDeviceResolver(a.Platform, a.logger)
	a.Capture = usecase.NewCaptureService(a.Platform, codec, usecase.CaptureConfig{RecordingsDir: cfg.RecordingsDir}, a.logger)
	a.Transcription = usecase.NewTranscriptionService(a.Speech, codec, cfg.Language, a.logger)
	a.Response = usecase.NewResponseService(a.Language, cfg.LLMModel, cfg.MaxHistoryPairs, a.logger)
	a.Synthesis = usecase.NewSynthesisService(a.Voice, player, playback.FileStore{}, usecase.SynthesisConfig{
		VoiceID:      cfg.TTSVoiceID,
		ModelID:      cfg.TTSModel,
		OutputFormat: cfg.TTSOutputFormat,
		Mode:         cfg.SynthesisMode(),
		OutputDir:    cfg.OutputDir,
	}, a.logger)
	a.Content = usecase.NewContentService(a.Language, cfg.LLMModel, a.logger)
	a.Benchmark = usecase.NewBenchmarkService(a.Language, cfg.LLMModel, a.Metrics, a.logger)

	session := entities.NewSession(options.Mode, cfg.Settings())
	if err := a.Sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.Session = session

	a.Orchestrator = turn.NewOrchestrator(turn.Services{
		Devices:       a.Devices,
		Capture:       a.Capture,
		Transcription: a.Transcription,
		Response:      a.Response,
		Synthesis:     a.Synthesis,
	}, turn.Config{
		SessionID:         a.Session.ID,
		RecordingDuration: cfg.Duration(),
		SaveRecordings:    cfg.SaveRecordings,
	}, a.logger)

	a.Orchestrator.AddObserver(a.Metrics)
	a.Orchestrator.AddObserver(turn.NewRecorder(a.Turns, a.Publisher, a.logger))
	a.Orchestrator.AddObserver(turn.ObserverFunc(a.countTurn))

	a.logger.Info("Session started",
		zap.String("sessionID", a.Session.ID),
		zap.String("mode", string(a.Session.Mode)),
		zap.String("sttProvider", cfg.STTProvider),
		zap.String("llmProvider", cfg.LLMProvider),
		zap.String("ttsProvider", cfg.TTSProvider))
	return nil
}

// buildStores uses MongoDB when a URI is configured and memory otherwise
func (a *App) buildStores(ctx context.Context) error {
	server := a.Config.Server

	if server.MongoURI == "" {
		a.Sessions = memory.NewSessionRepository()
		a.Turns = memory.NewTurnRepository()
	} else {
		client, err := mongo.NewClient(ctx, mongo.Config{URI: server.MongoURI, Database: server.MongoDatabase}, a.logger)
		if err != nil {
			return err
		}
		a.onClose(client.Close)

		turns := mongo.NewTurnRepository(client.Database, a.logger)
		if err := turns.EnsureIndexes(ctx); err != nil {
			return err
		}
		a.Sessions = mongo.NewSessionRepository(client.Database, a.logger)
		a.Turns = turns
	}

	a.Publisher = kafka.NewTurnPublisher(kafka.Config{Brokers: server.KafkaBrokers, Topic: server.KafkaTopic}, a.logger)
	a.onClose(func(context.Context) error { return a.Publisher.Close() })
	return nil
}

func (a *App) countTurn(ctx context.Context, event turn.Event) {
	if event.Type != turn.EventTurnCompleted {
		return
	}
	a.mu.Lock()
	a.Session.TurnCount++
	a.mu.Unlock()
}

func (a *App) onClose(fn func(ctx context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close ends the session and releases every resource, newest first
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Session != nil && a.Sessions != nil && a.Session.IsActive() {
		a.mu.Lock()
		a.Session.End()
		session := *a.Session
		a.mu.Unlock()

		updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.Sessions.Update(updateCtx, &session); err != nil {
			errs = append(errs, fmt.Errorf("failed to end session: %w", err))
		}
		cancel()
		a.logger.Info("Session ended", zap.String("sessionID", session.ID), zap.Int("turns", session.TurnCount))
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

// NewSpeechToText builds the configured speech recognition engine
func NewSpeechToText(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.SpeechToText, error) {
	switch cfg.STTProvider {
	case config.ProviderWhisper:
		whisper := stt.NewWhisperConfigFromEnv()
		whisper.APIKey = cfg.Credentials.OpenAIAPIKey
		whisper.SizeHint = cfg.STTModel
		return stt.NewWhisperSpeechToText(whisper, logger)
	case config.ProviderGoogle:
		google := stt.NewGoogleConfigFromEnv()
		google.CredentialsFile = cfg.Credentials.GoogleCredentialsFile
		return stt.NewGoogleSpeechToText(ctx, google, logger)
	case config.ProviderMock:
		return stt.NewMockSpeechToText(logger), nil
	}
	return nil, entities.NewConfigurationError("stt_provider", fmt.Sprintf("unknown provider %q", cfg.STTProvider))
}

// NewLanguageModel builds the configured language model
func NewLanguageModel(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.LargeLanguageModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini := llm.NewGeminiConfigFromEnv()
		gemini.APIKey = cfg.Credentials.GoogleAPIKey
		gemini.Model = cfg.LLMModel
		gemini.Temperature = float32(cfg.Temperature)
		gemini.MaxOutputTokens = cfg.MaxOutputTokens
		return llm.NewGeminiLLM(ctx, gemini, logger)
	case config.ProviderOpenAI:
		openAI := llm.NewOpenAIConfigFromEnv()
		openAI.APIKey = cfg.Credentials.OpenAIAPIKey
		openAI.Model = cfg.LLMModel
		openAI.MaxOutputTokens = cfg.MaxOutputTokens
		return llm.NewOpenAILLM(openAI, logger)
	case config.ProviderMock:
		return llm.NewMockLLM(), nil
	}
	return nil, entities.NewConfigurationError("llm_provider", fmt.Sprintf("unknown provider %q", cfg.LLMProvider))
}

// NewTextToSpeech builds the configured synthesis engine
func NewTextToSpeech(cfg config.Config, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		elevenLabs := tts.NewElevenLabsConfigFromEnv()
		elevenLabs.APIKey = cfg.Credentials.ElevenLabsAPIKey
		elevenLabs.VoiceID = cfg.TTSVoiceID
		elevenLabs.ModelID = cfg.TTSModel
		elevenLabs.OutputFormat = cfg.TTSOutputFormat
		return tts.NewElevenLabsTTS(elevenLabs, logger)
	case config.ProviderMock:
		return tts.NewMockTextToSpeech(), nil
	}
	return nil, entities.NewConfigurationError("tts_provider", fmt.Sprintf("unknown provider %q", cfg.TTSProvider))
}
