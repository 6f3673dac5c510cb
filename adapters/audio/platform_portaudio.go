//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
)

const framesPerBuffer = 1024

// PortAudioPlatform records from host devices through PortAudio
type PortAudioPlatform struct {
	logger *zap.Logger
	mu     sync.Mutex
}

// NewDefaultPlatform initializes PortAudio
func NewDefaultPlatform(logger *zap.Logger) (Platform, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	logger.Info("PortAudio initialized", zap.String("version", portaudio.VersionText()))
	return &PortAudioPlatform{logger: logger}, nil
}

// Devices enumerates devices in PortAudio order
func (p *PortAudioPlatform) Devices(ctx context.Context) ([]entities.Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]entities.Device, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, entities.Device{
			Index:             i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices, nil
}

// Record captures mono float samples from device, blocking for duration
func (p *PortAudioPlatform) Record(ctx context.Context, device entities.Device, duration time.Duration, sampleRate int) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := p.lookup(device.Index)
	if err != nil {
		return nil, err
	}

	total := entities.SamplesFor(duration, sampleRate)
	frames := framesPerBuffer
	if total < frames {
		frames = total
	}
	if frames <= 0 {
		return nil, fmt.Errorf("recording duration %s too short", duration)
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = frames

	buf := make([]float32, frames)
	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open input stream on %s: %w", entities.ErrDeviceFailure, info.Name, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start input stream: %w", entities.ErrDeviceFailure, err)
	}
	defer stream.Stop()

	samples := make([]float32, 0, total)
	for len(samples) < total {
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("failed to read input stream: %w", err)
		}
		samples = append(samples, buf...)
	}

	return samples[:total], nil
}

func (p *PortAudioPlatform) lookup(index int) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enumerate devices: %w", entities.ErrDeviceFailure, err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: device %d no longer present", entities.ErrDeviceFailure, index)
	}
	return infos[index], nil
}

// Close releases PortAudio
func (p *PortAudioPlatform) Close() error {
	return portaudio.Terminate()
}
