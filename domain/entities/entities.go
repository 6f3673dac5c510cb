package entities

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every stage of a turn.
// An empty transcript is not an error; see TranscriptEmpty.
var (
	ErrDeviceUnavailable = errors.New("no usable audio input device")
	ErrCaptureFailure    = errors.New("audio capture failed")
	ErrDeviceFailure     = errors.New("audio input device failed")
	ErrInvalidInput      = errors.New("either an audio buffer or a file path is required")
	ErrGenerationFailure = errors.New("response generation failed")
	ErrSynthesisFailure  = errors.New("speech synthesis failed")
	ErrConfiguration     = errors.New("invalid configuration")
)

// ConfigurationError reports a missing or invalid setting detected at startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError for key
func NewConfigurationError(key, reason string) error {
	return &ConfigurationError{Key: key, Reason: reason}
}
