package actions

import (
	"context"

	"github.com/atharv-dange/vaani/internal/intent"
)

// Action is a fully-specified request handed to the executor.
type Action struct {
	Type   intent.ActionType
	Params map[string]string
}

func (a Action) Param(name string) string { return a.Params[name] }

// ResultKind tags the executor outcome variant.
type ResultKind string

const (
	ResultSuccess             ResultKind = "success"
	ResultSuccessWithFeedback ResultKind = "success_feedback"
	ResultAskUser             ResultKind = "ask_user"
	ResultEndSession          ResultKind = "end_session"
	ResultFailure             ResultKind = "failure"
)

// Result is the tagged outcome of one action execution. Text carries the
// feedback phrase, the follow-up question, or the parting line depending on
// the kind.
type Result struct {
	Kind ResultKind
	Text string
}

// Executor performs a concrete device action.
type Executor interface {
	Execute(ctx context.Context, action Action, contextSummary string) (Result, error)
}
