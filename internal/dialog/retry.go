package dialog

import (
	"time"

	"github.com/atharv-dange/vaani/internal/speech"
)

// RetryClass is the classified handling for a recognizer failure.
type RetryClass int

const (
	// RetryFatal ends the session immediately, no retry.
	RetryFatal RetryClass = iota
	// RetryKeepListening restarts capture without counting a failure.
	RetryKeepListening
	// RetryImmediate counts against the bound and restarts after a short
	// fixed delay.
	RetryImmediate
	// RetryBackoff counts against the bound and restarts after a delay that
	// grows linearly with the counter.
	RetryBackoff
	// RetryIgnore is discarded outright and never advances the counter.
	RetryIgnore
)

func (c RetryClass) String() string {
	switch c {
	case RetryFatal:
		return "fatal"
	case RetryKeepListening:
		return "keep_listening"
	case RetryImmediate:
		return "retry_immediate"
	case RetryBackoff:
		return "retry_backoff"
	case RetryIgnore:
		return "ignored"
	default:
		return "unknown"
	}
}

// ClassifyRecognizerError maps an engine error code to its handling.
// listening reports whether the microphone was intentionally enabled when the
// error arrived: errors received while it was disabled reflect the disable
// itself, not a real failure, and are suppressed.
func ClassifyRecognizerError(code string, listening bool) RetryClass {
	if !listening {
		return RetryIgnore
	}
	switch code {
	case speech.ErrCodePermission, speech.ErrCodeAudio:
		return RetryFatal
	case speech.ErrCodeSpeechTimeout, speech.ErrCodeNoMatch:
		return RetryKeepListening
	case speech.ErrCodeBusy, speech.ErrCodeClient:
		return RetryImmediate
	case speech.ErrCodeNetwork, speech.ErrCodeNetworkTimeout, speech.ErrCodeServer:
		return RetryBackoff
	default:
		return RetryImmediate
	}
}

// LinearBackoff computes a deterministic capped delay that grows linearly
// with the attempt number.
func LinearBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 1 {
		return base
	}
	d := time.Duration(attempt) * base
	if d > cap {
		return cap
	}
	return d
}
