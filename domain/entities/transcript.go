package entities

import "strings"

// TranscriptStatus discriminates a usable transcript from "no speech detected"
type TranscriptStatus string

const (
	TranscriptOK    TranscriptStatus = "ok"
	TranscriptEmpty TranscriptStatus = "empty"
)

// Transcript is the text recognized for one turn, tagged with the session language
type Transcript struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Status   TranscriptStatus `json:"status"`
}

// NewTranscript trims text and marks it empty when nothing is left
func NewTranscript(text, language string) Transcript {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyTranscript(language)
	}
	return Transcript{Text: text, Language: language, Status: TranscriptOK}
}

// EmptyTranscript is the "no speech" result
func EmptyTranscript(language string) Transcript {
	return Transcript{Language: language, Status: TranscriptEmpty}
}

// IsEmpty reports whether no speech was recognized
func (t Transcript) IsEmpty() bool {
	return t.Status == TranscriptEmpty || t.Text == ""
}
