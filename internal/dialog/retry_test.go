package dialog

import (
	"testing"
	"time"

	"github.com/atharv-dange/vaani/internal/speech"
)

func TestClassifyRecognizerError(t *testing.T) {
	tests := []struct {
		code      string
		listening bool
		want      RetryClass
	}{
		{speech.ErrCodePermission, true, RetryFatal},
		{speech.ErrCodeAudio, true, RetryFatal},
		{speech.ErrCodeSpeechTimeout, true, RetryKeepListening},
		{speech.ErrCodeNoMatch, true, RetryKeepListening},
		{speech.ErrCodeBusy, true, RetryImmediate},
		{speech.ErrCodeClient, true, RetryImmediate},
		{speech.ErrCodeNetwork, true, RetryBackoff},
		{speech.ErrCodeNetworkTimeout, true, RetryBackoff},
		{speech.ErrCodeServer, true, RetryBackoff},
		{"some_future_code", true, RetryImmediate},
		// While the microphone is intentionally off, every code is noise.
		{speech.ErrCodeNetwork, false, RetryIgnore},
		{speech.ErrCodeAudio, false, RetryIgnore},
	}
	for _, tt := range tests {
		if got := ClassifyRecognizerError(tt.code, tt.listening); got != tt.want {
			t.Errorf("ClassifyRecognizerError(%q, %v) = %v, want %v", tt.code, tt.listening, got, tt.want)
		}
	}
}

func TestLinearBackoff(t *testing.T) {
	base := 300 * time.Millisecond
	limit := time.Second
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, base},
		{1, base},
		{2, 600 * time.Millisecond},
		{3, 900 * time.Millisecond},
		{4, limit},
		{100, limit},
	}
	for _, tt := range tests {
		if got := LinearBackoff(tt.attempt, base, limit); got != tt.want {
			t.Errorf("LinearBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
