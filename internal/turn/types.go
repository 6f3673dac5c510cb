package turn

import (
	"context"
	"time"

	"github.com/satriahrh/suara/domain/entities"
)

// State is the orchestrator position within a turn
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateGenerating   State = "generating"
	StateSpeaking     State = "speaking"
)

// EventType names a turn lifecycle event
type EventType string

const (
	EventStateChanged  EventType = "state_changed"
	EventTranscript    EventType = "transcript"
	EventReply         EventType = "reply"
	EventAudioChunk    EventType = "audio_chunk"
	EventTurnCompleted EventType = "turn_completed"
)

// Event is emitted to observers as a turn progresses
type Event struct {
	Type      EventType            `json:"type"`
	TurnID    string               `json:"turn_id"`
	SessionID string               `json:"session_id"`
	State     State                `json:"state,omitempty"`
	Text      string               `json:"text,omitempty"`
	Chunk     []byte               `json:"-"`
	Record    *entities.TurnRecord `json:"record,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Observer receives turn events synchronously, in order. Implementations
// must not call back into the orchestrator.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) {
	f(ctx, event)
}

// Result is everything a turn produced
type Result struct {
	Record     entities.TurnRecord      `json:"record"`
	Transcript entities.Transcript      `json:"transcript"`
	Reply      entities.Reply           `json:"reply"`
	Synthesis  entities.SynthesisResult `json:"-"`
	Err        error                    `json:"-"`
}

// Outcome is shorthand for Record.Outcome
func (r Result) Outcome() entities.TurnOutcome {
	return r.Record.Outcome
}

// Delivered reports whether the reply text reached the user
func (r Result) Delivered() bool {
	return r.Record.Outcome.Delivered()
}
