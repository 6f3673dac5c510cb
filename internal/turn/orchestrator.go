package turn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
	"github.com/satriahrh/suara/usecase"
)

const defaultRecordingDuration = 5 * time.Second

// DeviceSource hands out the session input device
type DeviceSource interface {
	Device(ctx context.Context) (*entities.Device, error)
	Invalidate()
}

// Services are the pipeline stages a turn runs through
type Services struct {
	Devices       DeviceSource
	Capture       *usecase.CaptureService
	Transcription *usecase.TranscriptionService
	Response      *usecase.ResponseService
	Synthesis     *usecase.SynthesisService
}

// Config holds per-session turn settings
type Config struct {
	SessionID         string
	RecordingDuration time.Duration
	SaveRecordings    bool
}

// Orchestrator drives one turn at a time through
// Idle -> Recording -> Transcribing -> Generating -> Speaking -> Idle
type Orchestrator struct {
	services  Services
	config    Config
	logger    *zap.Logger
	observers []Observer

	turnMu sync.Mutex

	stateMu sync.RWMutex
	state   State

	now func() time.Time
}

// NewOrchestrator creates an idle orchestrator
func NewOrchestrator(services Services, config Config, logger *zap.Logger) *Orchestrator {
	if config.RecordingDuration <= 0 {
		logger.Info("Using default recording duration", zap.Duration("duration", defaultRecordingDuration))
		config.RecordingDuration = defaultRecordingDuration
	}
	if config.SessionID == "" {
		config.SessionID = uuid.New().String()
	}

	return &Orchestrator{
		services: services,
		config:   config,
		logger:   logger.With(zap.String("sessionID", config.SessionID)),
		state:    StateIdle,
		now:      time.Now,
	}
}

// AddObserver registers an observer. Call before running turns.
func (o *Orchestrator) AddObserver(observer Observer) {
	o.observers = append(o.observers, observer)
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// SessionID returns the session the orchestrator serves
func (o *Orchestrator) SessionID() string {
	return o.config.SessionID
}

// Response returns the response service owning the conversation history
func (o *Orchestrator) Response() *usecase.ResponseService {
	return o.services.Response
}

// TurnOption customizes a single turn
type TurnOption func(*turnOptions)

type turnOptions struct {
	sink     repositories.AudioSink
	duration time.Duration
}

// WithSink streams the reply audio into sink instead of the session player
func WithSink(sink repositories.AudioSink) TurnOption {
	return func(opts *turnOptions) {
		opts.sink = sink
	}
}

// WithDuration overrides the recording duration for one live turn
func WithDuration(d time.Duration) TurnOption {
	return func(opts *turnOptions) {
		opts.duration = d
	}
}

// RunTurn records from the session device and runs the full pipeline
func (o *Orchestrator) RunTurn(ctx context.Context, options ...TurnOption) Result {
	opts := o.options(options)
	return o.run(ctx, entities.TurnSourceMicrophone, opts, func(t *turnRun) (usecase.AudioInput, bool) {
		return o.record(t, opts.duration)
	})
}

// RunFileTurn transcribes the audio file at path and continues from there
func (o *Orchestrator) RunFileTurn(ctx context.Context, path string, options ...TurnOption) Result {
	return o.run(ctx, entities.TurnSourceFile, o.options(options), func(t *turnRun) (usecase.AudioInput, bool) {
		return usecase.AudioInput{Path: path}, true
	})
}

// RunBufferTurn transcribes a pre-recorded buffer and continues from there
func (o *Orchestrator) RunBufferTurn(ctx context.Context, buffer entities.AudioBuffer, options ...TurnOption) Result {
	return o.run(ctx, entities.TurnSourceBuffer, o.options(options), func(t *turnRun) (usecase.AudioInput, bool) {
		return usecase.AudioInput{Buffer: &buffer}, true
	})
}

func (o *Orchestrator) options(options []TurnOption) turnOptions {
	opts := turnOptions{duration: o.config.RecordingDuration}
	for _, option := range options {
		option(&opts)
	}
	if opts.duration <= 0 {
		opts.duration = o.config.RecordingDuration
	}
	return opts
}

// turnRun carries the state of the turn in flight
type turnRun struct {
	ctx    context.Context
	result Result
	stage  time.Time
}

func (o *Orchestrator) run(ctx context.Context, source entities.TurnSource, opts turnOptions, acquire func(*turnRun) (usecase.AudioInput, bool)) Result {
	o.turnMu.Lock()
	defer o.turnMu.Unlock()

	t := &turnRun{
		ctx: ctx,
		result: Result{
			Record: entities.TurnRecord{
				ID:        uuid.New().String(),
				SessionID: o.config.SessionID,
				Source:    source,
				StartedAt: o.now(),
			},
		},
	}

	if err := ctx.Err(); err != nil {
		return o.finish(t, entities.OutcomeCancelled, err)
	}

	o.logger.Debug("Turn started", zap.String("turnID", t.result.Record.ID), zap.String("source", string(source)))

	input, ok := acquire(t)
	if !ok {
		return t.result
	}

	transcript, ok := o.transcribe(t, input)
	if !ok {
		return t.result
	}

	reply, ok := o.generate(t, transcript)
	if !ok {
		return t.result
	}

	return o.speak(t, reply, opts.sink)
}

func (o *Orchestrator) record(t *turnRun, duration time.Duration) (usecase.AudioInput, bool) {
	device, err := o.services.Devices.Device(t.ctx)
	if err != nil {
		o.finish(t, entities.OutcomeDeviceUnavailable, errors.Join(entities.ErrDeviceUnavailable, err))
		return usecase.AudioInput{}, false
	}
	if device == nil {
		o.finish(t, entities.OutcomeDeviceUnavailable, entities.ErrDeviceUnavailable)
		return usecase.AudioInput{}, false
	}

	o.enter(t, StateRecording)
	buffer, err := o.services.Capture.Record(t.ctx, duration, device)
	t.result.Record.Durations.Recording = o.since(t)
	if err != nil {
		if deviceLevel(err) {
			o.services.Devices.Invalidate()
		}
		outcome := entities.OutcomeCaptureFailed
		if errors.Is(err, entities.ErrDeviceUnavailable) {
			outcome = entities.OutcomeDeviceUnavailable
		}
		o.finish(t, outcome, err)
		return usecase.AudioInput{}, false
	}

	if o.config.SaveRecordings {
		path, err := o.services.Capture.PersistTimestamped(buffer)
		if err != nil {
			o.logger.Warn("Failed to save recording", zap.Error(err))
		} else {
			t.result.Record.RecordingPath = path
		}
	}

	return usecase.AudioInput{Buffer: &buffer}, true
}

func (o *Orchestrator) transcribe(t *turnRun, input usecase.AudioInput) (entities.Transcript, bool) {
	o.enter(t, StateTranscribing)
	transcript, err := o.services.Transcription.Transcribe(t.ctx, input)
	t.result.Record.Durations.Transcribing = o.since(t)
	if err != nil {
		o.finish(t, entities.OutcomeInvalidInput, err)
		return transcript, false
	}

	t.result.Transcript = transcript
	if transcript.IsEmpty() {
		o.logger.Info("No speech detected, turn skipped")
		o.finish(t, entities.OutcomeTranscriptionEmpty, nil)
		return transcript, false
	}

	t.result.Record.Transcript = transcript.Text
	o.emit(t, Event{Type: EventTranscript, Text: transcript.Text})
	return transcript, true
}

func (o *Orchestrator) generate(t *turnRun, transcript entities.Transcript) (entities.Reply, bool) {
	o.enter(t, StateGenerating)
	reply := o.services.Response.Respond(t.ctx, transcript)
	t.result.Record.Durations.Generating = o.since(t)
	t.result.Reply = reply

	if !reply.Speakable() {
		o.finish(t, entities.OutcomeGenerationFailed, reply.Err)
		return reply, false
	}

	t.result.Record.Reply = reply.Text
	o.emit(t, Event{Type: EventReply, Text: reply.Text})
	return reply, true
}

func (o *Orchestrator) speak(t *turnRun, reply entities.Reply, sink repositories.AudioSink) Result {
	o.enter(t, StateSpeaking)

	var synthesis entities.SynthesisResult
	if sink != nil {
		synthesis = o.services.Synthesis.SpeakTo(t.ctx, reply.Text, &eventSink{sink: sink, orchestrator: o, run: t})
	} else {
		synthesis = o.services.Synthesis.Speak(t.ctx, reply.Text)
	}
	t.result.Record.Durations.Speaking = o.since(t)
	t.result.Synthesis = synthesis
	t.result.Record.AudioPath = synthesis.Path

	if synthesis.Status == entities.SynthesisFailed {
		return o.finish(t, entities.OutcomeSynthesisFailed, synthesis.Err)
	}
	return o.finish(t, entities.OutcomeCompleted, nil)
}

func (o *Orchestrator) enter(t *turnRun, state State) {
	o.stateMu.Lock()
	o.state = state
	o.stateMu.Unlock()

	t.stage = o.now()
	o.emit(t, Event{Type: EventStateChanged, State: state})
}

func (o *Orchestrator) since(t *turnRun) time.Duration {
	return o.now().Sub(t.stage)
}

func (o *Orchestrator) finish(t *turnRun, outcome entities.TurnOutcome, err error) Result {
	record := &t.result.Record
	record.Outcome = outcome
	record.FinishedAt = o.now()
	t.result.Err = err
	if err != nil {
		record.Error = err.Error()
	}

	if o.State() != StateIdle {
		o.enter(t, StateIdle)
	}

	fields := []zap.Field{
		zap.String("turnID", record.ID),
		zap.String("outcome", string(outcome)),
		zap.Duration("elapsed", record.FinishedAt.Sub(record.StartedAt)),
	}
	switch outcome {
	case entities.OutcomeCompleted, entities.OutcomeTranscriptionEmpty, entities.OutcomeCancelled:
		o.logger.Info("Turn finished", fields...)
	default:
		o.logger.Warn("Turn aborted", append(fields, zap.Error(err))...)
	}

	snapshot := *record
	o.emit(t, Event{Type: EventTurnCompleted, Record: &snapshot})
	return t.result
}

func (o *Orchestrator) emit(t *turnRun, event Event) {
	event.TurnID = t.result.Record.ID
	event.SessionID = o.config.SessionID
	event.Timestamp = o.now()
	for _, observer := range o.observers {
		observer.OnEvent(t.ctx, event)
	}
}

// eventSink forwards reply audio to the caller sink and reports each chunk
type eventSink struct {
	sink         repositories.AudioSink
	orchestrator *Orchestrator
	run          *turnRun
}

func (s *eventSink) Write(chunk []byte) (int, error) {
	n, err := s.sink.Write(chunk)
	if err != nil {
		return n, err
	}
	s.orchestrator.emit(s.run, Event{Type: EventAudioChunk, Chunk: chunk})
	return n, nil
}

func (s *eventSink) Close() error {
	return s.sink.Close()
}

// deviceLevel reports whether a capture error means the resolved device should be probed again
func deviceLevel(err error) bool {
	return errors.Is(err, entities.ErrDeviceUnavailable) || errors.Is(err, entities.ErrDeviceFailure)
}
