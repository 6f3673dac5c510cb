package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

var errFakeDevice = errors.New("device busy")

// fakePlatform records at the requested rate and fails for devices listed in failing
type fakePlatform struct {
	devices []entities.Device
	failing map[int]bool
	enumErr error

	mu    sync.Mutex
	tried []int
}

func (p *fakePlatform) Devices(ctx context.Context) ([]entities.Device, error) {
	if p.enumErr != nil {
		return nil, p.enumErr
	}
	return p.devices, nil
}

func (p *fakePlatform) Record(ctx context.Context, device entities.Device, duration time.Duration, sampleRate int) ([]float32, error) {
	p.mu.Lock()
	p.tried = append(p.tried, device.Index)
	p.mu.Unlock()

	if p.failing[device.Index] {
		return nil, errFakeDevice
	}
	return make([]float32, entities.SamplesFor(duration, sampleRate)), nil
}

func (p *fakePlatform) attempts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.tried...)
}

// memorySink collects written chunks
type memorySink struct {
	chunks   [][]byte
	closed   bool
	writeErr error
}

func (s *memorySink) Write(chunk []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.chunks = append(s.chunks, append([]byte(nil), chunk...))
	return len(chunk), nil
}

func (s *memorySink) Close() error {
	s.closed = true
	return nil
}

func (s *memorySink) bytes() []byte {
	var out []byte
	for _, c := range s.chunks {
		out = append(out, c...)
	}
	return out
}

// memoryStore keeps files in memory
type memoryStore struct {
	files map[string][]byte
	sinks map[string]*memorySink
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}, sinks: map[string]*memorySink{}}
}

func (s *memoryStore) WriteFile(path string, audio []byte) error {
	s.files[path] = append([]byte(nil), audio...)
	return nil
}

func (s *memoryStore) Create(path string) (repositories.AudioSink, error) {
	sink := &memorySink{}
	s.sinks[path] = sink
	return sink, nil
}

// fakePlayer records played payloads and streams into a memorySink
type fakePlayer struct {
	played  [][]byte
	playErr error
	sink    *memorySink
}

func (p *fakePlayer) Play(ctx context.Context, audio []byte) error {
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, audio)
	return nil
}

func (p *fakePlayer) Stream(ctx context.Context) (repositories.AudioSink, error) {
	p.sink = &memorySink{}
	return p.sink, nil
}
