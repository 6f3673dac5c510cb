package playback

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/satriahrh/suara/domain/repositories"
)

// FileSink accumulates streamed audio into a file as chunks arrive
type FileSink struct {
	path    string
	file    *os.File
	written int
}

var _ repositories.AudioSink = (*FileSink)(nil)

// NewFileSink creates path and any missing parent directories
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return &FileSink{path: path, file: f}, nil
}

func (s *FileSink) Write(chunk []byte) (int, error) {
	n, err := s.file.Write(chunk)
	s.written += n
	return n, err
}

// Close flushes the file to disk
func (s *FileSink) Close() error {
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// Path returns the file being written
func (s *FileSink) Path() string {
	return s.path
}

// Written returns the number of bytes written so far
func (s *FileSink) Written() int {
	return s.written
}

// WriteFile saves a complete payload to path, creating parent directories
func WriteFile(path string, audio []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FileStore writes synthesized audio to the local filesystem
type FileStore struct{}

var _ repositories.AudioStore = FileStore{}

func (FileStore) WriteFile(path string, audio []byte) error {
	return WriteFile(path, audio)
}

func (FileStore) Create(path string) (repositories.AudioSink, error) {
	return NewFileSink(path)
}
