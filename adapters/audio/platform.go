package audio

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// NullPlatform exposes no devices. Builds without the portaudio tag use it,
// which leaves file, buffer and server turns fully functional.
type NullPlatform struct {
	logger *zap.Logger
}

var _ repositories.AudioPlatform = (*NullPlatform)(nil)

// NewNullPlatform creates a platform without audio hardware
func NewNullPlatform(logger *zap.Logger) *NullPlatform {
	return &NullPlatform{logger: logger}
}

// Devices always returns an empty list
func (p *NullPlatform) Devices(ctx context.Context) ([]entities.Device, error) {
	p.logger.Debug("Audio capture backend not compiled in, no devices available")
	return nil, nil
}

// Record always fails
func (p *NullPlatform) Record(ctx context.Context, device entities.Device, duration time.Duration, sampleRate int) ([]float32, error) {
	return nil, entities.ErrDeviceUnavailable
}

// Close is a no-op
func (p *NullPlatform) Close() error {
	return nil
}

// Platform is an AudioPlatform owning native resources
type Platform interface {
	repositories.AudioPlatform
	Close() error
}
