package entities

// SynthesisMode selects how synthesized audio is produced
type SynthesisMode string

const (
	// SynthesisBuffered accumulates the whole payload before returning.
	SynthesisBuffered SynthesisMode = "buffered"
	// SynthesisStreamed hands chunks to a single sink as they arrive.
	SynthesisStreamed SynthesisMode = "streamed"
)

// ParseSynthesisMode maps a config value to a mode, defaulting to buffered
func ParseSynthesisMode(s string) SynthesisMode {
	if SynthesisMode(s) == SynthesisStreamed {
		return SynthesisStreamed
	}
	return SynthesisBuffered
}

// SynthesisRequest describes one text-to-speech call
type SynthesisRequest struct {
	Text         string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Mode         SynthesisMode
	// SavePath, when set, sends the audio to a file instead of memory or a player.
	SavePath string
}

// SynthesisStatus discriminates the synthesis outcomes
type SynthesisStatus string

const (
	SynthesisOK      SynthesisStatus = "ok"
	SynthesisSkipped SynthesisStatus = "skipped"
	SynthesisFailed  SynthesisStatus = "failed"
)

// SynthesisResult is the outcome of a synthesis call.
// Audio is nil when the payload went to a file or a sink.
type SynthesisResult struct {
	Audio  []byte
	Path   string
	Bytes  int
	Chunks int
	Status SynthesisStatus
	Err    error
}

// OK reports whether audio was produced
func (r SynthesisResult) OK() bool {
	return r.Status == SynthesisOK
}

// Voice is a synthesis voice offered by the engine
type Voice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
}

// SynthesisModel is a synthesis model offered by the engine
type SynthesisModel struct {
	ModelID     string `json:"model_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
