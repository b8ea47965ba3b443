// Package dialog implements the spoken-dialogue turn-taking controller: the
// state machine that owns one voice interaction from wake trigger to session
// end. It arbitrates exclusive microphone/speaker ownership, runs the
// competing session timers, bounds transcription retries and tracks
// multi-turn slot-filling state.
package dialog

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharv-dange/vaani/internal/actions"
	"github.com/atharv-dange/vaani/internal/brain"
	"github.com/atharv-dange/vaani/internal/contacts"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/intent"
	"github.com/atharv-dange/vaani/internal/observability"
	"github.com/atharv-dange/vaani/internal/protocol"
	"github.com/atharv-dange/vaani/internal/speech"
)

const (
	historyContextTimeout = 350 * time.Millisecond
	historySaveTimeout    = 2 * time.Second
	acknowledgeTimeout    = 2 * time.Second
	retryDelayCap         = 3 * time.Second
	minUtteranceRunes     = 2
)

const (
	apologyGeneric    = "Sorry, something went wrong on my end. Let's try again later."
	apologyRetryLimit = "Sorry, I'm having trouble hearing you right now. Let's try again later."
	apologyContacts   = "I can't look up your contacts because I don't have permission. You can grant it in settings."
	repromptGeneric   = "Sorry, I didn't catch that. Could you say it again?"
	partingLine       = "Goodbye."
	fallbackAck       = "Yes?"
)

// Options configures the turn-taking controller.
type Options struct {
	WakePhrases  []string
	LanguageHint string

	SilenceTimeout time.Duration
	WakeAckTimeout time.Duration
	SettleDelay    time.Duration

	RetryMax       int
	RetryBaseDelay time.Duration

	HighConfidence float64
	HistoryLimit   int

	BargeInEnabled          bool
	BargeInSpeechThreshold  float64
	BargeInSilenceThreshold float64
}

func (o *Options) withDefaults() {
	if len(o.WakePhrases) == 0 {
		o.WakePhrases = []string{"hey vaani", "ok vaani", "vaani"}
	}
	if o.LanguageHint == "" {
		o.LanguageHint = "en-IN"
	}
	if o.SilenceTimeout <= 0 {
		o.SilenceTimeout = 8 * time.Second
	}
	if o.WakeAckTimeout <= 0 {
		o.WakeAckTimeout = 3 * time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 850 * time.Millisecond
	}
	if o.RetryMax <= 0 {
		o.RetryMax = 3
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 300 * time.Millisecond
	}
	if o.HighConfidence <= 0 || o.HighConfidence > 1 {
		o.HighConfidence = 0.75
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 8
	}
}

// Snapshot is a thread-safe view of controller state for the HTTP surface
// and tests.
type Snapshot struct {
	State         State     `json:"state"`
	SessionID     string    `json:"session_id,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	RetryCount    int       `json:"retry_count"`
	MicEnabled    bool      `json:"mic_enabled"`
	SpeakerActive bool      `json:"speaker_active"`
	Pending       string    `json:"pending,omitempty"`
}

// Controller sequences wake → listen → interpret → (clarify | act | chat) →
// speak → (resume | end). All mutable state is owned by the single sequencer
// goroutine inside Run; external inputs arrive through the event queue.
type Controller struct {
	opts Options

	recognizer  speech.Recognizer
	speaker     speech.Speaker
	wakeSource  speech.WakeSource
	levels      speech.LevelSource
	interpreter intent.Interpreter
	responder   brain.Responder
	executor    actions.Executor
	resolver    contacts.Resolver
	store       history.Store
	metrics     *observability.Metrics

	wake      *WakeMatcher
	timers    *timerRegistry
	events    chan event
	broadcast *broadcaster

	// Sequencer-owned. Never touched outside dispatch.
	runCtx          context.Context
	state           State
	session         *Session
	pending         *PendingAction
	pendingOutcome  *turnOutcome
	micEnabled      bool
	speakerActive   bool
	sawPartial      bool
	listenGen       int
	speakGen        int
	turnStartedAt   time.Time
	interpretCancel context.CancelFunc
	bargeCancel     context.CancelFunc

	snapMu sync.Mutex
	snap   Snapshot
}

// Collaborators bundles the external engines the controller drives.
type Collaborators struct {
	Recognizer  speech.Recognizer
	Speaker     speech.Speaker
	WakeSource  speech.WakeSource
	Levels      speech.LevelSource
	Interpreter intent.Interpreter
	Responder   brain.Responder
	Executor    actions.Executor
	Resolver    contacts.Resolver
	History     history.Store
}

func NewController(opts Options, collab Collaborators, metrics *observability.Metrics) *Controller {
	opts.withDefaults()
	c := &Controller{
		opts:        opts,
		recognizer:  collab.Recognizer,
		speaker:     collab.Speaker,
		wakeSource:  collab.WakeSource,
		levels:      collab.Levels,
		interpreter: collab.Interpreter,
		responder:   collab.Responder,
		executor:    collab.Executor,
		resolver:    collab.Resolver,
		store:       collab.History,
		metrics:     metrics,
		wake:        NewWakeMatcher(opts.WakePhrases),
		events:      make(chan event, 256),
		broadcast:   newBroadcaster(),
		state:       StateIdle,
	}
	c.timers = newTimerRegistry(func(kind timerKind, gen uint64, sessionID string) {
		c.events <- event{kind: evTimer, timer: kind, timerGen: gen, sessionID: sessionID}
	})
	c.snap = Snapshot{State: StateIdle}
	return c
}

// Wake injects an external wake trigger (HTTP surface, tests).
func (c *Controller) Wake() {
	c.events <- event{kind: evWake}
}

// RequestStop asks the controller to end the current session.
func (c *Controller) RequestStop() {
	c.events <- event{kind: evStop}
}

// Subscribe returns a feed of protocol events and an unsubscribe func.
func (c *Controller) Subscribe() (<-chan any, func()) {
	return c.broadcast.Subscribe()
}

// Snapshot returns a consistent view of the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.Lock()
	defer c.snapMu.Unlock()
	return c.snap
}

// Run consumes the event queue until ctx is cancelled. It is the only
// goroutine that mutates controller state.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	var triggers <-chan struct{}
	if c.wakeSource != nil {
		triggers = c.wakeSource.Triggers()
	}
	for {
		select {
		case <-ctx.Done():
			if c.session != nil {
				c.endSession(EndReasonShutdown)
			}
			return ctx.Err()
		case <-triggers:
			c.dispatch(event{kind: evWake})
		case ev := <-c.events:
			c.dispatch(ev)
		}
	}
}

func (c *Controller) dispatch(ev event) {
	defer c.publishSnapshot()

	// Session-scoped events from a stale or already-ended session are dropped
	// here, once, instead of relying on flag checks inside every handler.
	if ev.sessionID != "" && (c.session == nil || c.session.ID != ev.sessionID) {
		return
	}

	switch ev.kind {
	case evWake:
		c.onWake()
	case evStop:
		if c.session != nil {
			c.endSession(EndReasonStopRequest)
		}
	case evRecognizer:
		c.onRecognizerEvent(ev)
	case evPlaybackEnded:
		c.onPlaybackEnded(ev)
	case evTimer:
		c.onTimer(ev)
	case evTurnReady:
		c.onTurnReady(ev)
	case evBargeIn:
		c.onBargeIn()
	}
}

func (c *Controller) onWake() {
	switch c.state {
	case StateIdle:
		c.startSession()
	case StateActiveListening:
		// Second wake trigger while live extends the session; it never
		// allocates a new id or double-enables the microphone.
		c.timers.Start(timerWakeAck, c.opts.WakeAckTimeout, c.session.ID)
		c.metrics.SessionEvents.WithLabelValues("extended").Inc()
		c.broadcast.Publish(protocol.WakeWord{
			Type:      protocol.TypeWakeWord,
			SessionID: c.session.ID,
			Extended:  true,
		})
	default:
		// Already mid-turn; the session is live, nothing to extend.
	}
}

func (c *Controller) startSession() {
	now := time.Now().UTC()
	c.session = &Session{ID: uuid.NewString(), StartedAt: now}
	c.pending = nil
	c.pendingOutcome = nil
	c.sawPartial = false
	if c.wakeSource != nil {
		c.wakeSource.Pause()
	}

	c.metrics.SessionEvents.WithLabelValues("created").Inc()
	c.metrics.SessionActive.Set(1)
	c.broadcast.Publish(protocol.SessionStarted{
		Type:      protocol.TypeSessionStarted,
		SessionID: c.session.ID,
		TSMs:      now.UnixMilli(),
	})

	c.setState(StateActiveListening)
	c.startListening()
	c.timers.Start(timerSilence, c.opts.SilenceTimeout, c.session.ID)
	c.timers.Start(timerWakeAck, c.opts.WakeAckTimeout, c.session.ID)
}

// startListening enables the microphone and pumps recognizer events into the
// queue tagged with the capture generation, so events from a superseded
// attempt are dropped.
func (c *Controller) startListening() {
	c.listenGen++
	gen := c.listenGen
	sessionID := c.session.ID

	ch, err := c.recognizer.Start(c.runCtx, c.opts.LanguageHint)
	if err != nil {
		log.Printf("recognizer start failed: %v", err)
		c.events <- event{
			kind:       evRecognizer,
			sessionID:  sessionID,
			listenGen:  gen,
			recognizer: speech.Event{Type: speech.EventRecognizeError, Code: speech.ErrCodeClient, Detail: err.Error()},
		}
		c.micEnabled = true // classified and cleaned up by the error path
		return
	}
	c.micEnabled = true

	go func() {
		for rev := range ch {
			c.events <- event{kind: evRecognizer, sessionID: sessionID, listenGen: gen, recognizer: rev}
		}
	}()
}

// stopListening disables the microphone. cancel abandons the in-flight
// utterance instead of waiting for a final result.
func (c *Controller) stopListening(cancel bool) {
	if !c.micEnabled {
		return
	}
	c.micEnabled = false
	c.listenGen++
	if cancel {
		_ = c.recognizer.Cancel()
	} else {
		_ = c.recognizer.Stop()
	}
}

func (c *Controller) onRecognizerEvent(ev event) {
	if ev.listenGen != c.listenGen {
		return
	}
	rev := ev.recognizer
	switch rev.Type {
	case speech.EventReady:
		// capture armed; nothing to do
	case speech.EventBeginOfSpeech:
		if c.state != StateActiveListening {
			return
		}
		c.session.Retries = 0
		c.timers.Start(timerSilence, c.opts.SilenceTimeout, c.session.ID)
		c.timers.Cancel(timerWakeAck)
	case speech.EventPartial:
		if c.state != StateActiveListening || strings.TrimSpace(rev.Text) == "" {
			return
		}
		c.sawPartial = true
		c.timers.Start(timerSilence, c.opts.SilenceTimeout, c.session.ID)
		c.timers.Cancel(timerWakeAck)
		c.broadcast.Publish(protocol.TranscriptPartial{
			Type:      protocol.TypeTranscriptPart,
			SessionID: c.session.ID,
			Text:      rev.Text,
		})
	case speech.EventFinal:
		c.onFinalTranscript(rev.Text)
	case speech.EventEndOfSpeech:
		// the final transcript (or an error) follows
	case speech.EventRecognizeError:
		c.onRecognizerError(rev.Code)
	}
}

func (c *Controller) onFinalTranscript(text string) {
	// A transcript arriving while we're already transitioning away from
	// listening belongs to a capture we no longer want.
	if c.state != StateActiveListening {
		return
	}

	c.timers.Cancel(timerSilence)
	c.timers.Cancel(timerWakeAck)
	c.stopListening(false)

	stripped, _ := c.wake.StripPrefix(text)
	if len(strings.TrimSpace(stripped)) < minUtteranceRunes {
		// Empty or too-short capture: no failure tone, no retry count, just
		// keep listening.
		c.startListening()
		c.timers.Start(timerSilence, c.opts.SilenceTimeout, c.session.ID)
		return
	}

	c.broadcast.Publish(protocol.TranscriptFinal{
		Type:      protocol.TypeTranscriptFinal,
		SessionID: c.session.ID,
		Text:      stripped,
	})

	if IsStopCommand(stripped) {
		c.speakAndEnd(partingLine, EndReasonStopRequest)
		return
	}

	c.setState(StateUnderstanding)
	c.turnStartedAt = time.Now()
	c.beginInterpretation(stripped)
}

func (c *Controller) beginInterpretation(text string) {
	ictx, cancel := context.WithCancel(c.runCtx)
	c.interpretCancel = cancel
	sessionID := c.session.ID
	pending := c.pending.clone()

	go func() {
		defer cancel()
		outcome := c.interpretTurn(ictx, sessionID, text, pending)
		if ictx.Err() != nil {
			return
		}
		c.events <- event{kind: evTurnReady, sessionID: sessionID, outcome: outcome}
	}()
}

func (c *Controller) onTurnReady(ev event) {
	if c.state != StateUnderstanding || ev.outcome == nil {
		return
	}
	c.interpretCancel = nil
	outcome := ev.outcome
	c.pending = outcome.pending
	c.metrics.ObserveTurnLatency(time.Since(c.turnStartedAt))

	c.appendHistory(outcome)

	if strings.TrimSpace(outcome.speak) == "" {
		if outcome.endReason != "" {
			c.endSession(outcome.endReason)
		} else {
			c.resumeListening()
		}
		return
	}

	c.pendingOutcome = outcome
	c.broadcast.Publish(protocol.AssistantText{
		Type:      protocol.TypeAssistantText,
		SessionID: c.session.ID,
		Text:      outcome.speak,
	})
	if outcome.action != "" {
		c.broadcast.Publish(protocol.ActionDispatched{
			Type:      protocol.TypeActionDispatched,
			SessionID: c.session.ID,
			Action:    outcome.action,
			Outcome:   string(outcomeKind(outcome)),
		})
	}
	c.startSpeaking(outcome.speak)
}

func outcomeKind(o *turnOutcome) EndReason {
	if o.endReason != "" {
		return o.endReason
	}
	return "continue"
}

// startSpeaking hands the speaker an utterance. Any pending settle re-enable
// is cancelled first: if it were left to fire mid-playback two listening
// windows could start concurrently.
func (c *Controller) startSpeaking(text string) {
	c.timers.Cancel(timerSettle)
	c.setState(StateSpeaking)
	c.speakerActive = true
	c.speakGen++
	gen := c.speakGen
	sessionID := c.session.ID

	ch, err := c.speaker.Speak(c.runCtx, text)
	if err != nil {
		log.Printf("speaker failed: %v", err)
		c.events <- event{kind: evPlaybackEnded, sessionID: sessionID, speakGen: gen}
		return
	}
	c.startBargeInMonitor(sessionID)

	go func() {
		for pev := range ch {
			if pev.Type == speech.PlaybackEnded {
				c.events <- event{kind: evPlaybackEnded, sessionID: sessionID, speakGen: gen, interrupted: pev.Interrupted}
			}
		}
	}()
}

func (c *Controller) onPlaybackEnded(ev event) {
	if c.state != StateSpeaking || ev.speakGen != c.speakGen {
		return
	}
	c.speakerActive = false
	c.stopBargeInMonitor()

	outcome := c.pendingOutcome
	c.pendingOutcome = nil
	if outcome != nil && outcome.endReason != "" {
		c.endSession(outcome.endReason)
		return
	}
	if ev.interrupted {
		// The user is already talking; waiting out the settle delay would
		// swallow the start of their utterance.
		c.resumeListening()
		return
	}
	// Let playback hardware quiesce before the microphone comes back,
	// otherwise residual output bleeds into the next capture.
	c.timers.Start(timerSettle, c.opts.SettleDelay, c.session.ID)
}

func (c *Controller) resumeListening() {
	c.setState(StateActiveListening)
	c.sawPartial = false
	c.startListening()
	c.timers.Start(timerSilence, c.opts.SilenceTimeout, c.session.ID)
}

func (c *Controller) onTimer(ev event) {
	if !c.timers.Current(ev.timer, ev.timerGen) {
		return
	}
	c.metrics.TimerFires.WithLabelValues(string(ev.timer)).Inc()

	switch ev.timer {
	case timerSilence:
		if c.state == StateActiveListening {
			c.endSession(EndReasonSilenceTimeout)
		}
	case timerWakeAck:
		c.onWakeAckTimeout()
	case timerSettle:
		if c.state == StateSpeaking {
			c.resumeListening()
		}
	case timerRetry:
		if c.state == StateActiveListening && !c.micEnabled {
			c.startListening()
		}
	}
}

// onWakeAckTimeout handles a wake with no speech: rather than sitting in dead
// air, acknowledge and resume listening through the normal speaking path.
func (c *Controller) onWakeAckTimeout() {
	if c.state != StateActiveListening || c.sawPartial {
		return
	}
	c.timers.Cancel(timerSilence)
	c.stopListening(true)
	c.setState(StateUnderstanding)
	c.turnStartedAt = time.Now()

	ictx, cancel := context.WithCancel(c.runCtx)
	c.interpretCancel = cancel
	sessionID := c.session.ID
	go func() {
		defer cancel()
		ackCtx, ackCancel := context.WithTimeout(ictx, acknowledgeTimeout)
		defer ackCancel()
		ack, err := c.responder.Respond(ackCtx, brain.AcknowledgePrompt)
		if err != nil || strings.TrimSpace(ack) == "" {
			ack = fallbackAck
		}
		if ictx.Err() != nil {
			return
		}
		c.events <- event{kind: evTurnReady, sessionID: sessionID, outcome: &turnOutcome{speak: ack}}
	}()
}

func (c *Controller) onRecognizerError(code string) {
	class := ClassifyRecognizerError(code, c.micEnabled && c.state == StateActiveListening)
	c.metrics.RecognizerErrors.WithLabelValues(class.String()).Inc()

	switch class {
	case RetryIgnore:
		return
	case RetryKeepListening:
		c.stopListening(true)
		c.startListening()
	case RetryFatal:
		log.Printf("fatal recognizer error: %s", code)
		c.broadcast.Publish(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: c.session.ID,
			Code:      code,
			Source:    "recognizer",
			Retryable: false,
		})
		c.speakAndEnd(apologyGeneric, EndReasonFatalError)
	case RetryImmediate, RetryBackoff:
		c.session.Retries++
		if c.session.Retries >= c.opts.RetryMax {
			c.speakAndEnd(apologyRetryLimit, EndReasonRetryLimit)
			return
		}
		c.broadcast.Publish(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: c.session.ID,
			Code:      code,
			Source:    "recognizer",
			Retryable: true,
		})
		c.stopListening(true)
		delay := c.opts.RetryBaseDelay
		if class == RetryBackoff {
			delay = LinearBackoff(c.session.Retries, c.opts.RetryBaseDelay, retryDelayCap)
		}
		c.timers.Start(timerRetry, delay, c.session.ID)
	}
}

func (c *Controller) onBargeIn() {
	if c.state != StateSpeaking {
		return
	}
	// Stop playback; the interrupted playback-ended event drives the
	// transition back to listening.
	_ = c.speaker.Stop()
}

func (c *Controller) startBargeInMonitor(sessionID string) {
	if !c.opts.BargeInEnabled || c.levels == nil {
		return
	}
	bctx, cancel := context.WithCancel(c.runCtx)
	c.bargeCancel = cancel

	detector := newBargeInDetector(c.opts.BargeInSpeechThreshold, c.opts.BargeInSilenceThreshold)
	frames, err := c.levels.Levels(bctx)
	if err != nil {
		log.Printf("barge-in monitor unavailable: %v", err)
		cancel()
		c.bargeCancel = nil
		return
	}
	go func() {
		for {
			select {
			case <-bctx.Done():
				return
			case level, ok := <-frames:
				if !ok {
					return
				}
				if detector.Observe(level) {
					c.events <- event{kind: evBargeIn, sessionID: sessionID}
					return
				}
			}
		}
	}()
}

func (c *Controller) stopBargeInMonitor() {
	if c.bargeCancel != nil {
		c.bargeCancel()
		c.bargeCancel = nil
	}
}

// speakAndEnd voices a final line and ends the session when playback drains.
// The user is never left with a silently dead microphone.
func (c *Controller) speakAndEnd(text string, reason EndReason) {
	c.timers.Cancel(timerSilence)
	c.timers.Cancel(timerWakeAck)
	c.timers.Cancel(timerRetry)
	c.stopListening(true)
	c.pendingOutcome = &turnOutcome{speak: text, endReason: reason}
	c.broadcast.Publish(protocol.AssistantText{
		Type:      protocol.TypeAssistantText,
		SessionID: c.session.ID,
		Text:      text,
	})
	c.startSpeaking(text)
}

// endSession tears down every exit path the same way: both audio paths
// disabled, all timers and in-flight work cancelled, slot-filling state
// cleared, microphone ownership handed back to the wake detector. Missing any
// of these is how zombie listening sessions are born.
func (c *Controller) endSession(reason EndReason) {
	sessionID := c.session.ID
	c.timers.CancelAll()
	if c.interpretCancel != nil {
		c.interpretCancel()
		c.interpretCancel = nil
	}
	c.stopBargeInMonitor()
	c.stopListening(true)
	if c.speakerActive {
		_ = c.speaker.Stop()
	}
	c.speakerActive = false
	c.speakGen++
	c.pending = nil
	c.pendingOutcome = nil
	c.sawPartial = false
	c.session = nil
	c.setState(StateIdle)

	c.metrics.SessionEvents.WithLabelValues("ended_" + string(reason)).Inc()
	c.metrics.SessionActive.Set(0)
	c.broadcast.Publish(protocol.SessionEnded{
		Type:      protocol.TypeSessionEnded,
		SessionID: sessionID,
		Reason:    string(reason),
		TSMs:      time.Now().UnixMilli(),
	})

	if c.wakeSource != nil {
		c.wakeSource.Resume()
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.metrics.StateTransitions.WithLabelValues(string(s)).Inc()
	sessionID := ""
	if c.session != nil {
		sessionID = c.session.ID
	}
	c.broadcast.Publish(protocol.StateChanged{
		Type:      protocol.TypeStateChanged,
		SessionID: sessionID,
		State:     string(s),
		TSMs:      time.Now().UnixMilli(),
	})
}

func (c *Controller) appendHistory(outcome *turnOutcome) {
	if c.store == nil || strings.TrimSpace(outcome.userText) == "" {
		return
	}
	turn := history.Turn{
		SessionID:    c.session.ID,
		UserText:     outcome.userText,
		ResponseText: outcome.speak,
		ActionType:   outcome.action,
	}
	go func() {
		sctx, cancel := context.WithTimeout(context.Background(), historySaveTimeout)
		defer cancel()
		if err := c.store.Append(sctx, turn); err != nil {
			log.Printf("history append failed: %v", err)
		}
	}()
}

func (c *Controller) publishSnapshot() {
	snap := Snapshot{
		State:         c.state,
		RetryCount:    0,
		MicEnabled:    c.micEnabled,
		SpeakerActive: c.speakerActive,
	}
	if c.session != nil {
		snap.SessionID = c.session.ID
		snap.StartedAt = c.session.StartedAt
		snap.RetryCount = c.session.Retries
	}
	if c.pending != nil {
		snap.Pending = c.pending.Summary()
	}
	c.snapMu.Lock()
	c.snap = snap
	c.snapMu.Unlock()
}
