package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/repositories"
)

// playerArgs are the stdin-reading invocations of the supported players
var playerArgs = map[string][]string{
	"ffplay": {"-nodisp", "-autoexit", "-loglevel", "quiet", "-i", "-"},
	"mpv":    {"--no-video", "--really-quiet", "-"},
	"mpg123": {"-q", "-"},
}

// CommandPlayer plays encoded audio by piping it into an external player process
type CommandPlayer struct {
	command string
	args    []string
	logger  *zap.Logger
}

var _ repositories.AudioPlayer = (*CommandPlayer)(nil)

// NewCommandPlayer resolves command on PATH. Known players get their stdin
// arguments; any other command is run as is with audio on stdin.
func NewCommandPlayer(command string, logger *zap.Logger) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{"ffplay"}
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("audio player %q not found: %w", fields[0], err)
	}

	args := fields[1:]
	if len(args) == 0 {
		args = playerArgs[fields[0]]
	}

	logger.Info("Using audio player", zap.String("path", path), zap.Strings("args", args))

	return &CommandPlayer{command: path, args: args, logger: logger}, nil
}

// Play blocks until the player has consumed and played audio
func (p *CommandPlayer) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("player exited: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Stream starts the player and returns a sink feeding its stdin.
// Close waits for playback to finish.
func (p *CommandPlayer) Stream(ctx context.Context) (repositories.AudioSink, error) {
	cmd := exec.CommandContext(ctx, p.command, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open player stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player: %w", err)
	}

	return &commandSink{cmd: cmd, stdin: stdin, logger: p.logger}, nil
}

type commandSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *zap.Logger
}

func (s *commandSink) Write(chunk []byte) (int, error) {
	return s.stdin.Write(chunk)
}

func (s *commandSink) Close() error {
	if err := s.stdin.Close(); err != nil {
		s.logger.Debug("Closing player stdin", zap.Error(err))
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("player exited: %w", err)
	}
	return nil
}
