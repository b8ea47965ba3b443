package intent

import "strings"

// ActionType enumerates the concrete device actions the assistant can take.
type ActionType string

const (
	ActionNone          ActionType = "none"
	ActionCallContact   ActionType = "call_contact"
	ActionPlayMedia     ActionType = "play_media"
	ActionSetAlarm      ActionType = "set_alarm"
	ActionUpdateSetting ActionType = "update_setting"
)

// Kind tags the Decision variant.
type Kind string

const (
	KindAction  Kind = "action"
	KindChat    Kind = "chat"
	KindClarify Kind = "clarify"
	KindUnknown Kind = "unknown"
)

// Decision is the outcome of interpreting one utterance.
type Decision struct {
	Kind               Kind              `json:"kind"`
	Action             ActionType        `json:"action,omitempty"`
	Params             map[string]string `json:"params,omitempty"`
	Reply              string            `json:"reply,omitempty"`
	Question           string            `json:"question,omitempty"`
	Confidence         float64           `json:"confidence"`
	NeedsClarification bool              `json:"needs_clarification"`
}

// RequiredParams lists the parameter names an action needs before it can
// execute, in the order they should be asked for.
func RequiredParams(action ActionType) []string {
	switch action {
	case ActionCallContact:
		return []string{"contact"}
	case ActionPlayMedia:
		return []string{"query"}
	case ActionSetAlarm:
		return []string{"time"}
	case ActionUpdateSetting:
		return []string{"setting", "value"}
	default:
		return nil
	}
}

// MissingParams returns the required parameters absent from the decision.
func (d *Decision) MissingParams() []string {
	var missing []string
	for _, name := range RequiredParams(d.Action) {
		if strings.TrimSpace(d.Params[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Param returns a trimmed parameter value.
func (d *Decision) Param(name string) string {
	return strings.TrimSpace(d.Params[name])
}

// SetParam assigns a parameter, allocating the map on first use.
func (d *Decision) SetParam(name, value string) {
	if d.Params == nil {
		d.Params = make(map[string]string, 2)
	}
	d.Params[name] = value
}
