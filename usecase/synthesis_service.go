package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const defaultOutputDir = "output"

var (
	errNoAudio = errors.New("engine returned no audio")
	errNoSink  = errors.New("no audio player or save path for streamed synthesis")
)

// SynthesisConfig holds the session synthesis settings
type SynthesisConfig struct {
	VoiceID      string
	ModelID      string
	OutputFormat string
	Mode         entities.SynthesisMode
	OutputDir    string
}

// SynthesisService turns reply text into audio for a player, a file or a caller sink.
// Failures are reported in the result, never as errors.
type SynthesisService struct {
	tts    repositories.TextToSpeech
	player repositories.AudioPlayer
	store  repositories.AudioStore
	config SynthesisConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSynthesisService creates a synthesis service. player may be nil, in which
// case Speak saves audio under the output directory instead of playing it.
func NewSynthesisService(tts repositories.TextToSpeech, player repositories.AudioPlayer, store repositories.AudioStore, config SynthesisConfig, logger *zap.Logger) *SynthesisService {
	if config.Mode == "" {
		config.Mode = entities.SynthesisBuffered
	}
	if config.OutputDir == "" {
		config.OutputDir = defaultOutputDir
	}

	return &SynthesisService{
		tts:    tts,
		player: player,
		store:  store,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Synthesize runs one request in its own mode
func (s *SynthesisService) Synthesize(ctx context.Context, req entities.SynthesisRequest) entities.SynthesisResult {
	req = s.withDefaults(req)
	if strings.TrimSpace(req.Text) == "" {
		return entities.SynthesisResult{Status: entities.SynthesisSkipped}
	}

	if req.Mode == entities.SynthesisStreamed {
		return s.streamToOwnedSink(ctx, req)
	}

	audio, err := s.tts.Convert(ctx, req)
	if err != nil {
		return s.failed(err)
	}
	if len(audio) == 0 {
		return s.failed(errNoAudio)
	}

	if req.SavePath == "" {
		return entities.SynthesisResult{Audio: audio, Bytes: len(audio), Chunks: 1, Status: entities.SynthesisOK}
	}

	if err := s.store.WriteFile(req.SavePath, audio); err != nil {
		return s.failed(err)
	}

	s.logger.Info("Saved synthesized audio", zap.String("path", req.SavePath), zap.Int("bytes", len(audio)))
	return entities.SynthesisResult{Path: req.SavePath, Bytes: len(audio), Chunks: 1, Status: entities.SynthesisOK}
}

// Stream pulls chunks from the engine and writes each one to sink as it arrives.
// The sink is left open for the caller.
func (s *SynthesisService) Stream(ctx context.Context, req entities.SynthesisRequest, sink repositories.AudioSink) entities.SynthesisResult {
	req = s.withDefaults(req)
	req.Mode = entities.SynthesisStreamed
	if strings.TrimSpace(req.Text) == "" {
		return entities.SynthesisResult{Status: entities.SynthesisSkipped}
	}

	stream, err := s.tts.Stream(ctx, req)
	if err != nil {
		return s.failed(err)
	}
	defer stream.Close()

	result := entities.SynthesisResult{Status: entities.SynthesisOK}
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.failed(err)
		}
		if len(chunk) == 0 {
			continue
		}
		if _, err := sink.Write(chunk); err != nil {
			return s.failed(fmt.Errorf("sink write: %w", err))
		}
		result.Bytes += len(chunk)
		result.Chunks++
	}

	if result.Bytes == 0 {
		return s.failed(errNoAudio)
	}

	s.logger.Debug("Streamed synthesized audio", zap.Int("bytes", result.Bytes), zap.Int("chunks", result.Chunks))
	return result
}

// Speak synthesizes text in the configured mode and plays it. Without a
// player the audio is saved to a timestamped file under the output directory.
func (s *SynthesisService) Speak(ctx context.Context, text string) entities.SynthesisResult {
	req := entities.SynthesisRequest{Text: text, Mode: s.config.Mode}
	if s.player == nil {
		req.SavePath = s.outputPath(req)
	}

	if req.Mode == entities.SynthesisStreamed || req.SavePath != "" {
		return s.Synthesize(ctx, req)
	}

	result := s.Synthesize(ctx, req)
	if !result.OK() {
		return result
	}

	if err := s.player.Play(ctx, result.Audio); err != nil {
		return s.failed(fmt.Errorf("playback: %w", err))
	}
	return result
}

// SpeakTo delivers text as audio to sink. Buffered mode writes one chunk.
func (s *SynthesisService) SpeakTo(ctx context.Context, text string, sink repositories.AudioSink) entities.SynthesisResult {
	req := entities.SynthesisRequest{Text: text, Mode: s.config.Mode}
	if req.Mode == entities.SynthesisStreamed {
		return s.Stream(ctx, req, sink)
	}

	result := s.Synthesize(ctx, req)
	if !result.OK() {
		return result
	}

	if _, err := sink.Write(result.Audio); err != nil {
		return s.failed(fmt.Errorf("sink write: %w", err))
	}
	return result
}

// ListVoices returns the voices the engine offers
func (s *SynthesisService) ListVoices(ctx context.Context) ([]entities.Voice, error) {
	return s.tts.ListVoices(ctx)
}

// ListModels returns the synthesis models the engine offers
func (s *SynthesisService) ListModels(ctx context.Context) ([]entities.SynthesisModel, error) {
	return s.tts.ListModels(ctx)
}

// Mode returns the configured synthesis mode
func (s *SynthesisService) Mode() entities.SynthesisMode {
	return s.config.Mode
}

func (s *SynthesisService) streamToOwnedSink(ctx context.Context, req entities.SynthesisRequest) entities.SynthesisResult {
	var (
		sink repositories.AudioSink
		err  error
	)
	switch {
	case req.SavePath != "":
		sink, err = s.store.Create(req.SavePath)
	case s.player != nil:
		sink, err = s.player.Stream(ctx)
	default:
		err = errNoSink
	}
	if err != nil {
		return s.failed(err)
	}

	result := s.Stream(ctx, req, sink)
	if err := sink.Close(); err != nil && result.OK() {
		return s.failed(fmt.Errorf("closing sink: %w", err))
	}

	if result.OK() && req.SavePath != "" {
		result.Path = req.SavePath
		s.logger.Info("Saved streamed audio", zap.String("path", req.SavePath), zap.Int("bytes", result.Bytes))
	}
	return result
}

func (s *SynthesisService) withDefaults(req entities.SynthesisRequest) entities.SynthesisRequest {
	if req.VoiceID == "" {
		req.VoiceID = s.config.VoiceID
	}
	if req.ModelID == "" {
		req.ModelID = s.config.ModelID
	}
	if req.OutputFormat == "" {
		req.OutputFormat = s.config.OutputFormat
	}
	if req.Mode == "" {
		req.Mode = s.config.Mode
	}
	return req
}

func (s *SynthesisService) outputPath(req entities.SynthesisRequest) string {
	format := req.OutputFormat
	if format == "" {
		format = s.config.OutputFormat
	}
	ext, _, _ := strings.Cut(format, "_")
	if ext == "" {
		ext = "mp3"
	}
	name := fmt.Sprintf("response_%s.%s", s.now().Format("20060102_150405"), ext)
	return filepath.Join(s.config.OutputDir, name)
}

func (s *SynthesisService) failed(err error) entities.SynthesisResult {
	s.logger.Warn("Speech synthesis failed", zap.Error(err))
	return entities.SynthesisResult{
		Status: entities.SynthesisFailed,
		Err:    fmt.Errorf("%w: %w", entities.ErrSynthesisFailure, err),
	}
}
