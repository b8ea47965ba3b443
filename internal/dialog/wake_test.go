package dialog

import "testing"

func TestStripPrefix(t *testing.T) {
	m := NewWakeMatcher([]string{"hey vaani", "ok vaani", "vaani"})
	tests := []struct {
		in       string
		want     string
		stripped bool
	}{
		{"hey vaani call harsh", "call harsh", true},
		{"Vaani, what's the time", "what's the time", true},
		{"ok vaani", "", true},
		{"call harsh", "call harsh", false},
		// Longest phrase wins over the bare name.
		{"hey vaani play something", "play something", true},
		// A wake phrase embedded in a longer word is not a prefix.
		{"vaanilla ice cream", "vaanilla ice cream", false},
	}
	for _, tt := range tests {
		got, stripped := m.StripPrefix(tt.in)
		if got != tt.want || stripped != tt.stripped {
			t.Errorf("StripPrefix(%q) = (%q, %v), want (%q, %v)", tt.in, got, stripped, tt.want, tt.stripped)
		}
	}
}

func TestIsAffirmative(t *testing.T) {
	yes := []string{"yes", "Yeah!", "sure", "ok", "yes please", "yeah do that", "haan"}
	for _, s := range yes {
		if !IsAffirmative(s) {
			t.Errorf("IsAffirmative(%q) = false, want true", s)
		}
	}
	no := []string{"no", "call harsh", "yesterday", "not sure", "yes but actually call someone else entirely"}
	for _, s := range no {
		if IsAffirmative(s) {
			t.Errorf("IsAffirmative(%q) = true, want false", s)
		}
	}
}

func TestIsStopCommand(t *testing.T) {
	stops := []string{"stop", "Cancel", "goodbye", "never mind", "that's all"}
	for _, s := range stops {
		if !IsStopCommand(s) {
			t.Errorf("IsStopCommand(%q) = false, want true", s)
		}
	}
	if IsStopCommand("stop playing this song") {
		t.Errorf("command mentioning stop must not end the session")
	}
}
