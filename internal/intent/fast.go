package intent

import (
	"regexp"
	"strings"
)

// Fast command patterns. These only catch unambiguous phrasings; anything else
// is left to the accurate interpreter.
var (
	callRe    = regexp.MustCompile(`(?i)^(?:call|phone|dial|ring)\s+(.+)$`)
	playRe    = regexp.MustCompile(`(?i)^play\s+(.+)$`)
	alarmRe   = regexp.MustCompile(`(?i)^(?:set|create)\s+(?:an?\s+)?alarm(?:\s+(?:for|at)\s+(.+))?$`)
	settingRe = regexp.MustCompile(`(?i)^(?:turn|switch)\s+(on|off)\s+(?:the\s+)?(.+)$|^(?:enable|disable)\s+(?:the\s+)?(.+)$`)
)

const (
	fastActionConfidence  = 0.9
	fastPartialConfidence = 0.8
)

// Rules is the heuristic fast path of the interpreter. It never produces Chat
// decisions; conversation always goes through the accurate pass.
type Rules struct{}

func NewRules() *Rules { return &Rules{} }

func (r *Rules) InterpretFast(text string) (*Decision, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	text = strings.TrimRight(text, ".!?")

	if m := callRe.FindStringSubmatch(text); m != nil {
		d := &Decision{Kind: KindAction, Action: ActionCallContact, Confidence: fastActionConfidence}
		d.SetParam("contact", strings.TrimSpace(m[1]))
		return d, true
	}
	if m := playRe.FindStringSubmatch(text); m != nil {
		d := &Decision{Kind: KindAction, Action: ActionPlayMedia, Confidence: fastActionConfidence}
		d.SetParam("query", strings.TrimSpace(m[1]))
		return d, true
	}
	if m := alarmRe.FindStringSubmatch(text); m != nil {
		d := &Decision{Kind: KindAction, Action: ActionSetAlarm, Confidence: fastActionConfidence}
		when := strings.TrimSpace(m[1])
		if when == "" {
			d.Confidence = fastPartialConfidence
			d.NeedsClarification = true
		} else {
			d.SetParam("time", when)
		}
		return d, true
	}
	if m := settingRe.FindStringSubmatch(text); m != nil {
		d := &Decision{Kind: KindAction, Action: ActionUpdateSetting, Confidence: fastActionConfidence}
		if m[1] != "" {
			d.SetParam("setting", strings.TrimSpace(m[2]))
			d.SetParam("value", strings.ToLower(m[1]))
		} else {
			value := "on"
			if strings.HasPrefix(strings.ToLower(text), "disable") {
				value = "off"
			}
			d.SetParam("setting", strings.TrimSpace(m[3]))
			d.SetParam("value", value)
		}
		return d, true
	}

	return nil, false
}
