package intent

import "testing"

func TestInterpretFastCall(t *testing.T) {
	r := NewRules()
	d, ok := r.InterpretFast("Call Harsh")
	if !ok {
		t.Fatalf("expected a fast decision")
	}
	if d.Kind != KindAction || d.Action != ActionCallContact {
		t.Fatalf("decision = %+v, want call_contact action", d)
	}
	if d.Param("contact") != "Harsh" {
		t.Fatalf("contact = %q, want Harsh", d.Param("contact"))
	}
}

func TestInterpretFastTable(t *testing.T) {
	cases := []struct {
		text      string
		action    ActionType
		param     string
		wantValue string
	}{
		{"play lo-fi beats", ActionPlayMedia, "query", "lo-fi beats"},
		{"set an alarm for 7 am", ActionSetAlarm, "time", "7 am"},
		{"turn off wifi", ActionUpdateSetting, "setting", "wifi"},
		{"enable bluetooth", ActionUpdateSetting, "setting", "bluetooth"},
		{"dial mom.", ActionCallContact, "contact", "mom"},
	}
	r := NewRules()
	for _, tc := range cases {
		d, ok := r.InterpretFast(tc.text)
		if !ok {
			t.Fatalf("InterpretFast(%q) declined", tc.text)
		}
		if d.Action != tc.action {
			t.Fatalf("InterpretFast(%q) action = %q, want %q", tc.text, d.Action, tc.action)
		}
		if got := d.Param(tc.param); got != tc.wantValue {
			t.Fatalf("InterpretFast(%q) %s = %q, want %q", tc.text, tc.param, got, tc.wantValue)
		}
	}
}

func TestInterpretFastAlarmWithoutTimeNeedsClarification(t *testing.T) {
	r := NewRules()
	d, ok := r.InterpretFast("set an alarm")
	if !ok {
		t.Fatalf("expected a fast decision")
	}
	if !d.NeedsClarification {
		t.Fatalf("alarm without a time should need clarification")
	}
	if got := d.MissingParams(); len(got) != 1 || got[0] != "time" {
		t.Fatalf("MissingParams() = %v, want [time]", got)
	}
}

func TestInterpretFastDeclinesConversation(t *testing.T) {
	r := NewRules()
	for _, text := range []string{"", "how are you today", "what's the weather like"} {
		if d, ok := r.InterpretFast(text); ok {
			t.Fatalf("InterpretFast(%q) = %+v, want decline", text, d)
		}
	}
}
