package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// ResolveDevice returns the first input-capable device, in platform enumeration
// order, that completes a short trial recording at sampleRate. It returns a nil
// device without error when no candidate succeeds.
func ResolveDevice(ctx context.Context, platform repositories.AudioPlatform, sampleRate int, probe time.Duration, logger *zap.Logger) (*entities.Device, error) {
	devices, err := platform.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	candidates := 0
	for _, device := range devices {
		if !device.CanRecord() {
			continue
		}
		candidates++

		if _, err := platform.Record(ctx, device, probe, sampleRate); err != nil {
			logger.Debug("Device failed trial recording",
				zap.Int("index", device.Index),
				zap.String("name", device.Name),
				zap.Error(err))
			continue
		}

		logger.Info("Resolved audio input device",
			zap.Int("index", device.Index),
			zap.String("name", device.Name))

		resolved := device
		return &resolved, nil
	}

	logger.Warn("No usable audio input device",
		zap.Int("devices", len(devices)),
		zap.Int("candidates", candidates))

	return nil, nil
}

// DeviceResolver caches the resolved device for a session
type DeviceResolver struct {
	platform   repositories.AudioPlatform
	sampleRate int
	probe      time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	device   *entities.Device
	resolved bool
}

// NewDeviceResolver creates a resolver probing at the transcription sample rate
func NewDeviceResolver(platform repositories.AudioPlatform, logger *zap.Logger) *DeviceResolver {
	return &DeviceResolver{
		platform:   platform,
		sampleRate: entities.TranscriptionSampleRate,
		probe:      entities.ProbeDuration,
		logger:     logger,
	}
}

// Device returns the cached device, resolving it on first use or after Invalidate
func (r *DeviceResolver) Device(ctx context.Context) (*entities.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.device, nil
	}

	device, err := ResolveDevice(ctx, r.platform, r.sampleRate, r.probe, r.logger)
	if err != nil {
		return nil, err
	}

	r.device = device
	r.resolved = device != nil
	return device, nil
}

// Invalidate forces the next Device call to probe again
func (r *DeviceResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device != nil {
		r.logger.Info("Invalidating resolved audio device", zap.String("name", r.device.Name))
	}
	r.device = nil
	r.resolved = false
}

// Devices lists every device the platform reports
func (r *DeviceResolver) Devices(ctx context.Context) ([]entities.Device, error) {
	return r.platform.Devices(ctx)
}
