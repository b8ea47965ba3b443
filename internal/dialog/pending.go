package dialog

import (
	"fmt"
	"strings"

	"github.com/atharv-dange/vaani/internal/actions"
	"github.com/atharv-dange/vaani/internal/contacts"
	"github.com/atharv-dange/vaani/internal/intent"
)

// PendingAction is the slot-filling context for an action that still needs
// clarification. Its presence is the signal that the next utterance should be
// read in light of it rather than as a fresh request. Mutated only on the
// controller's sequencer.
type PendingAction struct {
	Action       intent.ActionType
	Collected    map[string]string
	Missing      []string
	LastQuestion string

	// Candidates holds the disambiguation list offered to the user, so the
	// next reply can be scored against those exact entries.
	Candidates []contacts.Candidate

	// Suggestion is the command re-run verbatim when the user answers a
	// confirmation question affirmatively.
	Suggestion string
}

// newPendingFromDecision captures an under-specified action decision.
func newPendingFromDecision(d *intent.Decision) *PendingAction {
	p := &PendingAction{
		Action:    d.Action,
		Collected: make(map[string]string),
		Missing:   d.MissingParams(),
	}
	for name, value := range d.Params {
		if strings.TrimSpace(value) != "" {
			p.Collected[name] = strings.TrimSpace(value)
		}
	}
	return p
}

// Supply moves a parameter from missing to collected.
func (p *PendingAction) Supply(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if p.Collected == nil {
		p.Collected = make(map[string]string)
	}
	p.Collected[name] = value
	missing := p.Missing[:0]
	for _, m := range p.Missing {
		if m != name {
			missing = append(missing, m)
		}
	}
	p.Missing = missing
}

// Complete reports whether every required parameter has been collected.
func (p *PendingAction) Complete() bool {
	return len(p.Missing) == 0 && len(p.Candidates) == 0
}

// NextQuestion produces the clarifying question for the first missing
// parameter.
func (p *PendingAction) NextQuestion() string {
	if len(p.Missing) == 0 {
		return ""
	}
	switch p.Missing[0] {
	case "contact":
		return "Who should I call?"
	case "number":
		return "What number should I use?"
	case "query":
		return "What should I play?"
	case "time":
		return "When should the alarm go off?"
	case "setting":
		return "Which setting should I change?"
	case "value":
		return "Should that be on or off?"
	default:
		return fmt.Sprintf("What should I use for %s?", p.Missing[0])
	}
}

// Summary serializes the pending state for the interpreter's context block.
func (p *PendingAction) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pending action: %s", p.Action)
	if len(p.Collected) > 0 {
		b.WriteString("; known:")
		for name, value := range p.Collected {
			fmt.Fprintf(&b, " %s=%s", name, value)
		}
	}
	if len(p.Missing) > 0 {
		fmt.Fprintf(&b, "; missing: %s", strings.Join(p.Missing, ", "))
	}
	if len(p.Candidates) > 0 {
		names := make([]string, 0, len(p.Candidates))
		for _, c := range p.Candidates {
			names = append(names, c.DisplayName)
		}
		fmt.Fprintf(&b, "; choosing between: %s", strings.Join(names, ", "))
	}
	if p.LastQuestion != "" {
		fmt.Fprintf(&b, "; asked: %q", p.LastQuestion)
	}
	return b.String()
}

// ToAction materializes the fully-specified request for the executor.
func (p *PendingAction) ToAction() actions.Action {
	params := make(map[string]string, len(p.Collected))
	for name, value := range p.Collected {
		params[name] = value
	}
	return actions.Action{Type: p.Action, Params: params}
}

func (p *PendingAction) clone() *PendingAction {
	if p == nil {
		return nil
	}
	c := &PendingAction{
		Action:       p.Action,
		Collected:    make(map[string]string, len(p.Collected)),
		Missing:      append([]string(nil), p.Missing...),
		LastQuestion: p.LastQuestion,
		Candidates:   append([]contacts.Candidate(nil), p.Candidates...),
		Suggestion:   p.Suggestion,
	}
	for name, value := range p.Collected {
		c.Collected[name] = value
	}
	return c
}
