package dialog

import (
	"time"

	"github.com/atharv-dange/vaani/internal/speech"
)

// State is the controller's position in the turn-taking cycle. All states
// except Idle are transient within a session.
type State string

const (
	StateIdle            State = "idle"
	StateActiveListening State = "active_listening"
	StateUnderstanding   State = "understanding"
	StateSpeaking        State = "speaking"
)

// EndReason records why a session terminated.
type EndReason string

const (
	EndReasonStopRequest      EndReason = "stop_request"
	EndReasonCompleted        EndReason = "completed"
	EndReasonSilenceTimeout   EndReason = "silence_timeout"
	EndReasonRetryLimit       EndReason = "retry_limit_exceeded"
	EndReasonFatalError       EndReason = "fatal_error"
	EndReasonPermissionDenied EndReason = "permission_denied"
	EndReasonShutdown         EndReason = "shutdown"
)

// Session is one conversational episode. Exactly one may be live at a time.
type Session struct {
	ID        string
	StartedAt time.Time
	Retries   int
}

type eventKind int

const (
	evWake eventKind = iota
	evStop
	evRecognizer
	evPlaybackEnded
	evTimer
	evTurnReady
	evBargeIn
)

// event is one entry on the controller's internal queue. Every async
// completion is tagged with the session it belongs to (and a generation where
// the producer can be superseded) so stale deliveries are provably dropped.
type event struct {
	kind        eventKind
	sessionID   string
	listenGen   int
	speakGen    int
	recognizer  speech.Event
	interrupted bool
	timer       timerKind
	timerGen    uint64
	outcome     *turnOutcome
}

// turnOutcome is the resolved result of one understanding pass: what to say,
// whether the session survives, and the slot-filling state to carry forward.
type turnOutcome struct {
	speak     string
	endReason EndReason
	pending   *PendingAction
	userText  string
	action    string
}
