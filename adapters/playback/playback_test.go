package playback

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestFileSinkWritesChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reply.mp3")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	for _, chunk := range [][]byte{[]byte("abc"), []byte("def")} {
		if _, err := sink.Write(chunk); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(data) != "abcdef" {
		t.Errorf("Expected abcdef, got %q", data)
	}

	if sink.Written() != 6 {
		t.Errorf("Expected 6 bytes written, got %d", sink.Written())
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "reply.mp3")

	if err := WriteFile(path, []byte("audio")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "audio" {
		t.Errorf("Expected audio, got %q", data)
	}
}

func TestNewCommandPlayerMissingBinary(t *testing.T) {
	if _, err := NewCommandPlayer("definitely-not-a-player-binary", zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error for missing player")
	}
}

func TestCommandPlayerPlayAndStream(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	player, err := NewCommandPlayer("cat", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	if err := player.Play(context.Background(), []byte("buffered")); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	sink, err := player.Stream(context.Background())
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if _, err := sink.Write([]byte("chunk")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
