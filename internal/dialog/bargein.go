package dialog

// bargeInDetector decides, from low-rate amplitude frames, when the user has
// started talking over the assistant. RMS levels with hysteresis: a few loud
// frames to trigger, so residual playback echo or a cough doesn't interrupt
// the utterance.
type bargeInDetector struct {
	speechThreshold  float64
	silenceThreshold float64
	speechFrames     int
	inSpeech         bool
	speechCount      int
}

func newBargeInDetector(speechThreshold, silenceThreshold float64) *bargeInDetector {
	if speechThreshold <= 0 {
		speechThreshold = 0.015
	}
	if silenceThreshold <= 0 || silenceThreshold >= speechThreshold {
		silenceThreshold = speechThreshold / 2
	}
	return &bargeInDetector{
		speechThreshold:  speechThreshold,
		silenceThreshold: silenceThreshold,
		speechFrames:     3,
	}
}

// Observe feeds one normalized amplitude frame and reports whether this frame
// is the onset of user speech.
func (d *bargeInDetector) Observe(level float64) bool {
	if d.inSpeech {
		if level < d.silenceThreshold {
			d.inSpeech = false
			d.speechCount = 0
		}
		return false
	}
	if level >= d.speechThreshold {
		d.speechCount++
		if d.speechCount >= d.speechFrames {
			d.inSpeech = true
			d.speechCount = 0
			return true
		}
	} else {
		d.speechCount = 0
	}
	return false
}

func (d *bargeInDetector) Reset() {
	d.inSpeech = false
	d.speechCount = 0
}
