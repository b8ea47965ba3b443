// Package brain wraps the remote conversational model. The dialogue
// controller uses it for open conversation and for phrasing clarification and
// wake acknowledgements; it never interprets commands itself.
package brain

import "context"

type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// AcknowledgePrompt is sent when the user woke the assistant but said nothing.
const AcknowledgePrompt = "The user said the wake word but nothing else. Reply with a very short acknowledgement inviting them to speak, like \"Yes?\"."
