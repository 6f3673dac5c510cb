package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/internal/turn"
)

// console prints turn progress for a person at the terminal
type console struct {
	out      io.Writer
	duration float64
}

func newConsole(out io.Writer, duration float64) *console {
	return &console{out: out, duration: duration}
}

func (c *console) banner() {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(c.out, "\n"+line)
	fmt.Fprintln(c.out, "🎙️  Voice Assistant - Interactive Mode")
	fmt.Fprintln(c.out, "  - Press Ctrl+C to exit")
	fmt.Fprintln(c.out, "  - Speak when you see the 'Recording...' prompt")
	fmt.Fprintln(c.out, line+"\n")
}

// OnEvent implements turn.Observer
func (c *console) OnEvent(ctx context.Context, event turn.Event) {
	switch event.Type {
	case turn.EventStateChanged:
		switch event.State {
		case turn.StateRecording:
			fmt.Fprintf(c.out, "\n🎤 Recording for %.1f seconds...\n", c.duration)
		case turn.StateTranscribing:
			fmt.Fprintln(c.out, "\n🔍 Transcribing speech...")
		case turn.StateGenerating:
			fmt.Fprintln(c.out, "\n🤖 Generating response...")
		case turn.StateSpeaking:
			fmt.Fprintln(c.out, "\n🔊 Speaking...")
		}
	case turn.EventTranscript:
		fmt.Fprintf(c.out, "🎤 You said: %s\n", event.Text)
	case turn.EventReply:
		fmt.Fprintf(c.out, "\n💬 Assistant: %s\n", event.Text)
	case turn.EventTurnCompleted:
		if event.Record == nil {
			return
		}
		switch event.Record.Outcome {
		case entities.OutcomeTranscriptionEmpty:
			fmt.Fprintln(c.out, "No speech detected.")
		case entities.OutcomeGenerationFailed:
			fmt.Fprintln(c.out, "No response generated.")
		case entities.OutcomeSynthesisFailed:
			fmt.Fprintln(c.out, "Could not speak the response.")
		case entities.OutcomeDeviceUnavailable, entities.OutcomeCaptureFailed:
			fmt.Fprintln(c.out, "Microphone unavailable, retrying...")
		case entities.OutcomeInvalidInput:
			fmt.Fprintf(c.out, "Could not read audio: %s\n", event.Record.Error)
		}
		if event.Record.AudioPath != "" {
			fmt.Fprintf(c.out, "💾 Reply saved to %s\n", event.Record.AudioPath)
		}
	}
}
