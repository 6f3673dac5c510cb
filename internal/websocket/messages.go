package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/suara/internal/turn"
)

// MessageType defines the type of a JSON websocket message
type MessageType string

// Client to server
const (
	MessageTypePing         MessageType = "ping"
	MessageTypeClearHistory MessageType = "clear_history"
)

// Server to client. Turn events are sent with their own event type.
const (
	MessageTypePong       MessageType = "pong"
	MessageTypeError      MessageType = "error"
	MessageTypeTurnResult MessageType = "turn_result"
	MessageTypeHistory    MessageType = "history_cleared"
)

// BaseMessage defines the common structure for all control messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	MessageID string      `json:"message_id,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// TurnResultMessage is sent to the client whose audio started the turn
type TurnResultMessage struct {
	BaseMessage
	Result turn.Result `json:"result"`
	Error  string      `json:"error,omitempty"`
}

// ParseClientMessage decodes and validates a control message from the client
func ParseClientMessage(data []byte) (*BaseMessage, error) {
	var msg BaseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch msg.Type {
	case MessageTypePing, MessageTypeClearHistory:
		return &msg, nil
	case "":
		return nil, fmt.Errorf("message missing type field")
	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

func newBase(t MessageType, replyTo string) BaseMessage {
	return BaseMessage{Type: t, Timestamp: time.Now().Format(time.RFC3339), MessageID: replyTo}
}

func newErrorMessage(code, message string) ErrorMessage {
	return ErrorMessage{BaseMessage: newBase(MessageTypeError, ""), Code: code, Message: message}
}
