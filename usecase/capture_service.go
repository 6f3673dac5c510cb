package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

const defaultRecordingsDir = "recordings"

// CaptureConfig configures the CaptureService
type CaptureConfig struct {
	SampleRate    int
	RecordingsDir string
}

// CaptureService records fixed-duration buffers and saves them as WAV
type CaptureService struct {
	platform      repositories.AudioPlatform
	codec         repositories.AudioCodec
	sampleRate    int
	recordingsDir string
	logger        *zap.Logger
	now           func() time.Time
}

// NewCaptureService creates a capture service
func NewCaptureService(platform repositories.AudioPlatform, codec repositories.AudioCodec, config CaptureConfig, logger *zap.Logger) *CaptureService {
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = entities.TranscriptionSampleRate
	}

	recordingsDir := config.RecordingsDir
	if recordingsDir == "" {
		recordingsDir = defaultRecordingsDir
	}

	return &CaptureService{
		platform:      platform,
		codec:         codec,
		sampleRate:    sampleRate,
		recordingsDir: recordingsDir,
		logger:        logger,
		now:           time.Now,
	}
}

// Record blocks for the full duration and returns the captured mono buffer
func (c *CaptureService) Record(ctx context.Context, duration time.Duration, device *entities.Device) (entities.AudioBuffer, error) {
	if device == nil {
		return entities.AudioBuffer{}, entities.ErrDeviceUnavailable
	}

	if duration <= 0 {
		return entities.AudioBuffer{}, fmt.Errorf("%w: duration must be positive, got %s", entities.ErrCaptureFailure, duration)
	}

	c.logger.Info("Recording",
		zap.Duration("duration", duration),
		zap.String("device", device.Name))

	samples, err := c.platform.Record(ctx, *device, duration, c.sampleRate)
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("%w: %w", entities.ErrCaptureFailure, err)
	}

	buffer := entities.NewAudioBuffer(samples, c.sampleRate)
	c.logger.Debug("Recording complete", zap.Int("samples", buffer.Len()))
	return buffer, nil
}

// Persist writes buffer to path as 16-bit PCM mono WAV
func (c *CaptureService) Persist(buffer entities.AudioBuffer, path string) (string, error) {
	saved, err := c.codec.Save(path, buffer)
	if err != nil {
		return "", fmt.Errorf("failed to persist recording: %w", err)
	}

	c.logger.Info("Saved recording", zap.String("path", saved))
	return saved, nil
}

// PersistTimestamped saves buffer as recordings/recording_YYYYMMDD_HHMMSS.wav
func (c *CaptureService) PersistTimestamped(buffer entities.AudioBuffer) (string, error) {
	return c.Persist(buffer, filepath.Join(c.recordingsDir, RecordingFileName(c.now())))
}

// Load reads an audio file and normalizes it to the capture sample rate
func (c *CaptureService) Load(path string) (entities.AudioBuffer, error) {
	return c.codec.Load(path, c.sampleRate)
}

// SampleRate returns the capture rate
func (c *CaptureService) SampleRate() int {
	return c.sampleRate
}

// RecordingFileName names a recording by its capture time
func RecordingFileName(t time.Time) string {
	return fmt.Sprintf("recording_%s.wav", t.Format("20060102_150405"))
}
