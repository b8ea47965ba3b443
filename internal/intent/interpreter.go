package intent

import "context"

// Interpreter classifies user utterances into decisions.
//
// InterpretFast is a synchronous heuristic pass that may decline; it exists so
// obvious commands skip the round trip to the remote classifier.
// InterpretAccurate is the asynchronous authoritative pass and receives the
// serialized conversation context.
type Interpreter interface {
	InterpretFast(text string) (*Decision, bool)
	InterpretAccurate(ctx context.Context, text, contextSummary string) (*Decision, error)
}
