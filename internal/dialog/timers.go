package dialog

import (
	"sync"
	"time"
)

type timerKind string

const (
	timerSilence timerKind = "silence"
	timerWakeAck timerKind = "wake_ack"
	timerSettle  timerKind = "settle"
	timerRetry   timerKind = "retry"
)

// timerRegistry owns the controller's cancellable delayed callbacks. Every
// Start bumps the kind's generation; a fire is delivered only while its
// generation is still current, so Cancel genuinely kills a pending fire
// instead of leaving it to race the dispatcher.
type timerRegistry struct {
	mu     sync.Mutex
	gens   map[timerKind]uint64
	timers map[timerKind]*time.Timer
	fire   func(kind timerKind, gen uint64, sessionID string)
}

func newTimerRegistry(fire func(kind timerKind, gen uint64, sessionID string)) *timerRegistry {
	return &timerRegistry{
		gens:   make(map[timerKind]uint64),
		timers: make(map[timerKind]*time.Timer),
		fire:   fire,
	}
}

func (r *timerRegistry) Start(kind timerKind, d time.Duration, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[kind]; ok {
		t.Stop()
	}
	r.gens[kind]++
	gen := r.gens[kind]
	r.timers[kind] = time.AfterFunc(d, func() {
		if !r.Current(kind, gen) {
			return
		}
		r.fire(kind, gen, sessionID)
	})
}

func (r *timerRegistry) Cancel(kind timerKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[kind]++
	if t, ok := r.timers[kind]; ok {
		t.Stop()
		delete(r.timers, kind)
	}
}

func (r *timerRegistry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, t := range r.timers {
		r.gens[kind]++
		t.Stop()
		delete(r.timers, kind)
	}
}

// Current reports whether gen is still the live generation for kind. The
// dispatcher re-checks this so a fire that was already queued when Cancel ran
// is still dropped.
func (r *timerRegistry) Current(kind timerKind, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[kind] == gen
}
