package entities

import "strings"

// ReplyStatus discriminates a speakable reply from a failed generation
type ReplyStatus string

const (
	ReplyOK               ReplyStatus = "ok"
	ReplyGenerationFailed ReplyStatus = "generation_failed"
)

// Reply is the outcome of one response generation
type Reply struct {
	Text       string      `json:"text"`
	Status     ReplyStatus `json:"status"`
	TokenCount int         `json:"token_count,omitempty"`
	Err        error       `json:"-"`
}

// NewReply returns a successful reply
func NewReply(text string, tokenCount int) Reply {
	return Reply{Text: strings.TrimSpace(text), Status: ReplyOK, TokenCount: tokenCount}
}

// FailedReply returns a reply carrying the generation failure reason
func FailedReply(err error) Reply {
	return Reply{Status: ReplyGenerationFailed, Err: err}
}

// Speakable reports whether the reply may be handed to synthesis
func (r Reply) Speakable() bool {
	return r.Status == ReplyOK && r.Text != ""
}

// Reason returns the failure message, or "" for a successful reply
func (r Reply) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
