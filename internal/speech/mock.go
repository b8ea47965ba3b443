package speech

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockRecognizer is a hand-driven recognizer for tests and the simulator.
// Events are injected with Emit and delivered on the channel returned by the
// most recent Start.
type MockRecognizer struct {
	mu         sync.Mutex
	events     chan Event
	starts     int
	stops      int
	cancels    int
	startErr   error
	lastHint   string
	generation int
}

func NewMockRecognizer() *MockRecognizer { return &MockRecognizer{} }

func (r *MockRecognizer) Start(_ context.Context, languageHint string) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, r.startErr
	}
	if r.events != nil {
		return nil, errors.New("recognizer already listening")
	}
	r.starts++
	r.generation++
	r.lastHint = languageHint
	r.events = make(chan Event, 32)
	return r.events, nil
}

func (r *MockRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
	r.closeLocked()
	return nil
}

func (r *MockRecognizer) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
	r.closeLocked()
	return nil
}

func (r *MockRecognizer) closeLocked() {
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

// Emit delivers an event to the current listening attempt. It is a no-op when
// no attempt is outstanding, mirroring an engine callback racing a stop.
func (r *MockRecognizer) Emit(ev Event) {
	r.mu.Lock()
	ch := r.events
	r.mu.Unlock()
	if ch == nil {
		return
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	ch <- ev
}

func (r *MockRecognizer) EmitPartial(text string) { r.Emit(Event{Type: EventPartial, Text: text}) }
func (r *MockRecognizer) EmitFinal(text string)   { r.Emit(Event{Type: EventFinal, Text: text}) }
func (r *MockRecognizer) EmitBeginOfSpeech()      { r.Emit(Event{Type: EventBeginOfSpeech}) }
func (r *MockRecognizer) EmitError(code string)   { r.Emit(Event{Type: EventRecognizeError, Code: code}) }

func (r *MockRecognizer) SetStartErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startErr = err
}

func (r *MockRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events != nil
}

func (r *MockRecognizer) Counts() (starts, stops, cancels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts, r.stops, r.cancels
}

// MockSpeaker simulates the voice output engine. When autoFinish is positive
// each utterance ends on its own after that delay; otherwise FinishSpeech must
// be called.
type MockSpeaker struct {
	mu         sync.Mutex
	current    chan PlaybackEvent
	spoken     []string
	stops      int
	autoFinish time.Duration
}

func NewMockSpeaker(autoFinish time.Duration) *MockSpeaker {
	return &MockSpeaker{autoFinish: autoFinish}
}

func (s *MockSpeaker) Speak(_ context.Context, text string) (<-chan PlaybackEvent, error) {
	s.mu.Lock()
	if s.current != nil {
		s.current <- PlaybackEvent{Type: PlaybackEnded, Interrupted: true}
		close(s.current)
	}
	ch := make(chan PlaybackEvent, 4)
	s.current = ch
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()

	ch <- PlaybackEvent{Type: PlaybackStarted}
	if s.autoFinish > 0 {
		go func() {
			time.Sleep(s.autoFinish)
			s.finish(ch, false)
		}()
	}
	return ch, nil
}

func (s *MockSpeaker) Stop() error {
	s.mu.Lock()
	ch := s.current
	s.mu.Unlock()
	if ch != nil {
		s.finish(ch, true)
	}
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	return nil
}

// FinishSpeech completes the in-progress utterance as if playback drained.
func (s *MockSpeaker) FinishSpeech() {
	s.mu.Lock()
	ch := s.current
	s.mu.Unlock()
	if ch != nil {
		s.finish(ch, false)
	}
}

func (s *MockSpeaker) finish(ch chan PlaybackEvent, interrupted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != ch {
		return
	}
	s.current = nil
	ch <- PlaybackEvent{Type: PlaybackEnded, Interrupted: interrupted}
	close(ch)
}

func (s *MockSpeaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

func (s *MockSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}

// MockWakeSource delivers wake triggers on demand and records pause/resume
// handoffs of microphone ownership.
type MockWakeSource struct {
	mu       sync.Mutex
	triggers chan struct{}
	paused   bool
	pauses   int
	resumes  int
}

func NewMockWakeSource() *MockWakeSource {
	return &MockWakeSource{triggers: make(chan struct{}, 8)}
}

func (w *MockWakeSource) Triggers() <-chan struct{} { return w.triggers }

func (w *MockWakeSource) Trigger() { w.triggers <- struct{}{} }

func (w *MockWakeSource) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
	w.pauses++
}

func (w *MockWakeSource) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = false
	w.resumes++
}

func (w *MockWakeSource) Paused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

func (w *MockWakeSource) Handoffs() (pauses, resumes int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pauses, w.resumes
}

// MockLevelSource feeds scripted amplitude frames to the barge-in monitor.
type MockLevelSource struct {
	mu     sync.Mutex
	levels chan float64
}

func NewMockLevelSource() *MockLevelSource {
	return &MockLevelSource{levels: make(chan float64, 64)}
}

func (l *MockLevelSource) Levels(_ context.Context) (<-chan float64, error) {
	return l.levels, nil
}

func (l *MockLevelSource) Push(level float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case l.levels <- level:
	default:
	}
}
