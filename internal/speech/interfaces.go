package speech

import "context"

type EventType string

const (
	EventReady          EventType = "ready"
	EventBeginOfSpeech  EventType = "begin_of_speech"
	EventPartial        EventType = "partial"
	EventFinal          EventType = "final"
	EventEndOfSpeech    EventType = "end_of_speech"
	EventRecognizeError EventType = "error"
)

// Recognizer error codes. These mirror the failure taxonomy of a typical
// on-device speech engine.
const (
	ErrCodeAudio          = "audio"
	ErrCodeClient         = "client"
	ErrCodePermission     = "insufficient_permissions"
	ErrCodeNetwork        = "network"
	ErrCodeNetworkTimeout = "network_timeout"
	ErrCodeNoMatch        = "no_match"
	ErrCodeBusy           = "recognizer_busy"
	ErrCodeServer         = "server"
	ErrCodeSpeechTimeout  = "speech_timeout"
)

type Event struct {
	Type      EventType
	Text      string
	Code      string
	Detail    string
	Timestamp int64
}

// Recognizer is the speech capture engine. At most one Start may be
// outstanding at a time; the returned channel is closed when the capture
// attempt ends for any reason.
type Recognizer interface {
	Start(ctx context.Context, languageHint string) (<-chan Event, error)
	Stop() error
	Cancel() error
}

type PlaybackEventType string

const (
	PlaybackStarted PlaybackEventType = "started"
	PlaybackEnded   PlaybackEventType = "ended"
)

type PlaybackEvent struct {
	Type        PlaybackEventType
	Interrupted bool
}

// Speaker is the voice output engine. Speak interrupts any in-progress
// utterance; the returned channel is closed after the ended event.
type Speaker interface {
	Speak(ctx context.Context, text string) (<-chan PlaybackEvent, error)
	Stop() error
}

// WakeSource is the out-of-scope wake-word detector. It owns the microphone
// whenever the controller is idle; the controller pauses it for the duration
// of a session and resumes it on session end.
type WakeSource interface {
	Triggers() <-chan struct{}
	Pause()
	Resume()
}

// LevelSource emits low-rate normalized amplitude frames in [0,1] for the
// barge-in monitor. It is distinct from the main transcription engine and is
// the only capture path permitted while the speaker is active.
type LevelSource interface {
	Levels(ctx context.Context) (<-chan float64, error)
}
