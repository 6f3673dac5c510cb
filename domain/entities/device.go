package entities

import "fmt"

// Device is an audio device as enumerated by the platform.
// A resolved *Device doubles as the session's device handle; nil is the null handle.
type Device struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	MaxInputChannels  int     `json:"max_input_channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
}

// CanRecord reports whether the device exposes at least one input channel
func (d Device) CanRecord() bool {
	return d.MaxInputChannels > 0
}

func (d Device) String() string {
	return fmt.Sprintf("#%d %s (%d in, %.0f Hz)", d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
}
