//go:build !portaudio

package audio

import "go.uber.org/zap"

// NewDefaultPlatform returns the capture backend compiled into this binary.
// Build with -tags portaudio for microphone support.
func NewDefaultPlatform(logger *zap.Logger) (Platform, error) {
	logger.Info("Built without portaudio, microphone capture disabled")
	return NewNullPlatform(logger), nil
}
