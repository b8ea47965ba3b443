package dialog

import "testing"

func TestBargeInRequiresSustainedSpeech(t *testing.T) {
	d := newBargeInDetector(0.5, 0.2)

	if d.Observe(0.9) || d.Observe(0.9) {
		t.Fatalf("triggered before the frame threshold")
	}
	if !d.Observe(0.9) {
		t.Fatalf("third loud frame should trigger onset")
	}
	if d.Observe(0.9) {
		t.Fatalf("onset reported twice for one utterance")
	}
}

func TestBargeInIsolatedSpikeIgnored(t *testing.T) {
	d := newBargeInDetector(0.5, 0.2)

	d.Observe(0.9)
	d.Observe(0.1) // cough, then silence
	if d.Observe(0.9) || d.Observe(0.9) {
		t.Fatalf("spike should have reset the consecutive-frame count")
	}
	if !d.Observe(0.9) {
		t.Fatalf("sustained speech after reset should trigger")
	}
}

func TestBargeInHysteresisReleasesOnSilence(t *testing.T) {
	d := newBargeInDetector(0.5, 0.2)
	d.Observe(0.9)
	d.Observe(0.9)
	d.Observe(0.9) // onset

	// Mid levels between the thresholds keep the in-speech latch.
	if d.Observe(0.3) {
		t.Fatalf("mid level re-triggered during speech")
	}
	d.Observe(0.1) // below silence threshold releases
	d.Observe(0.9)
	d.Observe(0.9)
	if !d.Observe(0.9) {
		t.Fatalf("new utterance after release should trigger again")
	}
}

func TestBargeInDefaultThresholds(t *testing.T) {
	d := newBargeInDetector(0, 0)
	if d.speechThreshold <= 0 || d.silenceThreshold <= 0 || d.silenceThreshold >= d.speechThreshold {
		t.Fatalf("invalid defaults: speech=%v silence=%v", d.speechThreshold, d.silenceThreshold)
	}
}
