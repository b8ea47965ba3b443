package dialog

import (
	"sort"
	"strings"
)

// WakeMatcher strips a leading wake phrase from transcripts. The recognizer
// often captures the tail of the wake word together with the query, so
// "hey vaani call harsh" must interpret as "call harsh".
type WakeMatcher struct {
	phrases []string
}

func NewWakeMatcher(phrases []string) *WakeMatcher {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	// Longest first so "hey vaani" wins over "vaani".
	sort.Slice(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	return &WakeMatcher{phrases: cleaned}
}

// StripPrefix removes the longest matching wake phrase from the front of text
// and reports whether one was found.
func (w *WakeMatcher) StripPrefix(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, phrase := range w.phrases {
		if !strings.HasPrefix(lower, phrase) {
			continue
		}
		rest := trimmed[len(phrase):]
		if rest != "" && rest[0] != ' ' && rest[0] != ',' {
			// "vaanilla" is not a wake prefix.
			continue
		}
		return strings.TrimLeft(rest, " ,"), true
	}
	return trimmed, false
}

var affirmatives = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {},
	"ok": {}, "okay": {}, "do it": {}, "go ahead": {}, "please do": {},
	"haan": {}, "correct": {}, "right": {},
}

// IsAffirmative reports whether text is a bare confirmation of a previously
// offered suggestion.
func IsAffirmative(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(strings.TrimRight(text, ".!?")))
	if _, ok := affirmatives[norm]; ok {
		return true
	}
	// "yes please", "yeah do that"
	fields := strings.Fields(norm)
	if len(fields) > 0 {
		if _, ok := affirmatives[fields[0]]; ok && len(fields) <= 3 {
			return true
		}
	}
	return false
}

var stopCommands = map[string]struct{}{
	"stop": {}, "cancel": {}, "goodbye": {}, "bye": {}, "bye bye": {},
	"never mind": {}, "nevermind": {}, "that's all": {}, "thats all": {},
	"go to sleep": {}, "shut up": {},
}

// IsStopCommand reports whether the utterance explicitly ends the session.
func IsStopCommand(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(strings.TrimRight(text, ".!?")))
	_, ok := stopCommands[norm]
	return ok
}
