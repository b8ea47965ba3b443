package dialog

import (
	"strings"
	"testing"

	"github.com/atharv-dange/vaani/internal/intent"
)

func TestNewPendingFromDecision(t *testing.T) {
	d := &intent.Decision{Kind: intent.KindAction, Action: intent.ActionUpdateSetting}
	d.SetParam("setting", "wifi")
	p := newPendingFromDecision(d)

	if p.Collected["setting"] != "wifi" {
		t.Fatalf("collected = %v", p.Collected)
	}
	if len(p.Missing) != 1 || p.Missing[0] != "value" {
		t.Fatalf("missing = %v, want [value]", p.Missing)
	}
	if p.Complete() {
		t.Fatalf("pending with missing params reported complete")
	}
}

func TestSupplyCompletesAction(t *testing.T) {
	p := &PendingAction{
		Action:    intent.ActionSetAlarm,
		Collected: map[string]string{},
		Missing:   []string{"time"},
	}
	p.Supply("time", " 7 am ")

	if !p.Complete() {
		t.Fatalf("pending not complete after supplying last param")
	}
	action := p.ToAction()
	if action.Param("time") != "7 am" {
		t.Fatalf("time = %q, want trimmed value", action.Param("time"))
	}
}

func TestSupplyIgnoresBlankValue(t *testing.T) {
	p := &PendingAction{
		Action:  intent.ActionPlayMedia,
		Missing: []string{"query"},
	}
	p.Supply("query", "   ")
	if p.Complete() {
		t.Fatalf("blank value must not satisfy a missing param")
	}
}

func TestNextQuestionPerParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"contact", "Who should I call?"},
		{"query", "What should I play?"},
		{"time", "When should the alarm go off?"},
		{"setting", "Which setting should I change?"},
		{"value", "Should that be on or off?"},
	}
	for _, tt := range tests {
		p := &PendingAction{Missing: []string{tt.param}}
		if got := p.NextQuestion(); got != tt.want {
			t.Errorf("NextQuestion(%s) = %q, want %q", tt.param, got, tt.want)
		}
	}
}

func TestSummaryMentionsState(t *testing.T) {
	p := &PendingAction{
		Action:       intent.ActionCallContact,
		Collected:    map[string]string{"contact": "Harsh"},
		Missing:      []string{"number"},
		LastQuestion: "Which number should I call?",
	}
	s := p.Summary()
	for _, want := range []string{"call_contact", "contact=Harsh", "number", "Which number"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() = %q, missing %q", s, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := &PendingAction{
		Action:    intent.ActionCallContact,
		Collected: map[string]string{"contact": "Harsh"},
		Missing:   []string{"number"},
	}
	c := p.clone()
	c.Supply("number", "+911234567890")

	if _, leaked := p.Collected["number"]; leaked {
		t.Fatalf("clone mutation leaked into the original")
	}
	if len(p.Missing) != 1 {
		t.Fatalf("original missing changed: %v", p.Missing)
	}
}

func TestCloneNil(t *testing.T) {
	var p *PendingAction
	if p.clone() != nil {
		t.Fatalf("clone of nil pending should be nil")
	}
}
