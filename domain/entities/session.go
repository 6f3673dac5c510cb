package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// SessionMode is how the session receives audio
type SessionMode string

const (
	SessionModeInteractive SessionMode = "interactive"
	SessionModeFile        SessionMode = "file"
	SessionModeServer      SessionMode = "server"
)

// SessionSettings is the snapshot of the options a session started with
type SessionSettings struct {
	STTProvider       string  `json:"stt_provider" bson:"stt_provider" yaml:"stt_provider"`
	STTModel          string  `json:"stt_model" bson:"stt_model" yaml:"stt_model"`
	Language          string  `json:"language" bson:"language" yaml:"language"`
	LLMProvider       string  `json:"llm_provider" bson:"llm_provider" yaml:"llm_provider"`
	LLMModel          string  `json:"llm_model" bson:"llm_model" yaml:"llm_model"`
	TTSVoiceID        string  `json:"tts_voice_id" bson:"tts_voice_id" yaml:"tts_voice_id"`
	TTSModel          string  `json:"tts_model" bson:"tts_model" yaml:"tts_model"`
	TTSMode           string  `json:"tts_mode" bson:"tts_mode" yaml:"tts_mode"`
	RecordingDuration float64 `json:"recording_duration" bson:"recording_duration" yaml:"recording_duration"`
	SaveRecordings    bool    `json:"save_recordings" bson:"save_recordings" yaml:"save_recordings"`
	MaxHistoryPairs   int     `json:"max_history_pairs" bson:"max_history_pairs" yaml:"max_history_pairs"`
}

// Session is one run of the orchestrator, from startup to shutdown
type Session struct {
	ID        string          `json:"id" bson:"_id"`
	Mode      SessionMode     `json:"mode" bson:"mode"`
	Status    SessionStatus   `json:"status" bson:"status"`
	StartedAt time.Time       `json:"started_at" bson:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	Settings  SessionSettings `json:"settings" bson:"settings"`
	TurnCount int             `json:"turn_count" bson:"turn_count"`
}

// NewSession creates an active session
func NewSession(mode SessionMode, settings SessionSettings) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		Status:    SessionStatusActive,
		StartedAt: time.Now(),
		Settings:  settings,
	}
}

// End marks the session as ended
func (s *Session) End() {
	now := time.Now()
	s.Status = SessionStatusEnded
	s.EndedAt = &now
}

// IsActive reports whether the session still accepts turns
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// Validate validates the session data
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}

	if s.Status != SessionStatusActive && s.Status != SessionStatusEnded {
		return errors.New("invalid session status")
	}

	if s.EndedAt != nil && s.EndedAt.Before(s.StartedAt) {
		return errors.New("ended_at is before started_at")
	}

	return nil
}

// TurnSource tells where a turn's audio came from
type TurnSource string

const (
	TurnSourceMicrophone TurnSource = "microphone"
	TurnSourceFile       TurnSource = "file"
	TurnSourceBuffer     TurnSource = "buffer"
)

// TurnOutcome is how a turn ended
type TurnOutcome string

const (
	OutcomeCompleted          TurnOutcome = "completed"
	OutcomeDeviceUnavailable  TurnOutcome = "device_unavailable"
	OutcomeCaptureFailed      TurnOutcome = "capture_failed"
	OutcomeInvalidInput       TurnOutcome = "invalid_input"
	OutcomeTranscriptionEmpty TurnOutcome = "transcription_empty"
	OutcomeGenerationFailed   TurnOutcome = "generation_failed"
	// OutcomeSynthesisFailed still counts the reply as delivered.
	OutcomeSynthesisFailed TurnOutcome = "synthesis_failed"
	// OutcomeCancelled means the turn never started because its context was done.
	OutcomeCancelled TurnOutcome = "cancelled"
)

// Delivered reports whether the reply text reached the user
func (o TurnOutcome) Delivered() bool {
	return o == OutcomeCompleted || o == OutcomeSynthesisFailed
}

// StageDurations records how long each stage of a turn took
type StageDurations struct {
	Recording    time.Duration `json:"recording" bson:"recording"`
	Transcribing time.Duration `json:"transcribing" bson:"transcribing"`
	Generating   time.Duration `json:"generating" bson:"generating"`
	Speaking     time.Duration `json:"speaking" bson:"speaking"`
}

// TurnRecord is the persisted log of one turn
type TurnRecord struct {
	ID            string         `json:"id" bson:"_id"`
	SessionID     string         `json:"session_id" bson:"session_id"`
	Source        TurnSource     `json:"source" bson:"source"`
	StartedAt     time.Time      `json:"started_at" bson:"started_at"`
	FinishedAt    time.Time      `json:"finished_at" bson:"finished_at"`
	Outcome       TurnOutcome    `json:"outcome" bson:"outcome"`
	Transcript    string         `json:"transcript,omitempty" bson:"transcript,omitempty"`
	Reply         string         `json:"reply,omitempty" bson:"reply,omitempty"`
	Error         string         `json:"error,omitempty" bson:"error,omitempty"`
	RecordingPath string         `json:"recording_path,omitempty" bson:"recording_path,omitempty"`
	AudioPath     string         `json:"audio_path,omitempty" bson:"audio_path,omitempty"`
	Durations     StageDurations `json:"durations" bson:"durations"`
}
