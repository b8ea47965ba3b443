package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/atharv-dange/vaani/internal/actions"
	"github.com/atharv-dange/vaani/internal/contacts"
	"github.com/atharv-dange/vaani/internal/history"
	"github.com/atharv-dange/vaani/internal/intent"
)

// interpretTurn resolves one final transcript into a turn outcome. It runs
// off the sequencer goroutine and therefore works only on the snapshot it was
// handed; the controller applies the returned state when the outcome event is
// dispatched.
func (c *Controller) interpretTurn(ctx context.Context, sessionID, text string, pending *PendingAction) *turnOutcome {
	if pending != nil {
		return c.interpretClarificationReply(ctx, sessionID, text, pending)
	}
	return c.interpretFresh(ctx, sessionID, text)
}

// interpretClarificationReply reads the utterance as the answer to the
// question we just asked, rather than as a new request.
func (c *Controller) interpretClarificationReply(ctx context.Context, sessionID, text string, pending *PendingAction) *turnOutcome {
	if pending.Suggestion != "" {
		if IsAffirmative(text) {
			pending.Suggestion = ""
			if pending.Complete() {
				return c.executePending(ctx, sessionID, text, pending)
			}
			return askNext(text, pending)
		}
		// Declined the guess; start over from what they actually said.
		return c.interpretFresh(ctx, sessionID, text)
	}

	if len(pending.Candidates) > 0 {
		return c.interpretCandidateChoice(ctx, sessionID, text, pending)
	}

	if len(pending.Missing) > 0 {
		// A clarification reply can still be a brand-new command ("actually,
		// play some music instead"). A confident fast-pass hit wins over slot
		// filling.
		if d, ok := c.interpreter.InterpretFast(text); ok && d.Kind == intent.KindAction && d.Confidence >= c.opts.HighConfidence {
			return c.applyDecision(ctx, sessionID, text, d)
		}
		pending.Supply(pending.Missing[0], text)
		if pending.Complete() {
			return c.executePending(ctx, sessionID, text, pending)
		}
		return askNext(text, pending)
	}

	// Pending existed but carried nothing actionable; fall back to a fresh
	// read of the utterance.
	return c.interpretFresh(ctx, sessionID, text)
}

// interpretCandidateChoice matches a disambiguation reply against the exact
// candidate list the user was offered. Keyword overlap covers replies that
// describe a contact ("the one from work") rather than naming it.
func (c *Controller) interpretCandidateChoice(ctx context.Context, sessionID, text string, pending *PendingAction) *turnOutcome {
	keywords := contacts.Keywords(text)

	var winner contacts.Candidate
	best, runnerUp, found := 0, 0, false
	for _, cand := range pending.Candidates {
		score := contacts.KeywordScore(cand, keywords)
		switch {
		case score > best:
			runnerUp = best
			best = score
			winner = cand
			found = true
		case score == best && score > 0:
			runnerUp = score
			found = false
		}
	}
	if found && best > 0 && best > runnerUp {
		pending.Candidates = nil
		pending.Supply("contact", winner.DisplayName)
		pending.Supply("number", winner.Number)
		return c.executePending(ctx, sessionID, text, pending)
	}

	// No unique winner among the offered candidates; maybe the reply is a
	// fuller name the directory can resolve outright.
	if c.resolver != nil {
		match, err := c.resolver.ResolveWithKeywords(ctx, text, keywords)
		if err == nil && match.Kind == contacts.MatchExact {
			pending.Candidates = nil
			pending.Supply("contact", match.Candidate.DisplayName)
			pending.Supply("number", match.Candidate.Number)
			return c.executePending(ctx, sessionID, text, pending)
		}
	}

	question := "I still have " + candidateNames(pending.Candidates) + ". Which one did you mean?"
	pending.LastQuestion = question
	return &turnOutcome{speak: question, pending: pending, userText: text}
}

// interpretFresh classifies a new request: fast heuristic pass first, then
// the remote interpreter with conversation context.
func (c *Controller) interpretFresh(ctx context.Context, sessionID, text string) *turnOutcome {
	fast, fastOK := c.interpreter.InterpretFast(text)
	if fastOK && fast.Confidence >= c.opts.HighConfidence {
		return c.applyDecision(ctx, sessionID, text, fast)
	}

	decision, err := c.interpreter.InterpretAccurate(ctx, text, c.contextSummary(ctx, sessionID, nil))
	if err != nil {
		if ctx.Err() != nil {
			return &turnOutcome{userText: text}
		}
		log.Printf("accurate interpretation failed: %v", err)
		if fastOK && fast.Kind == intent.KindAction {
			// Remote pass is down but the heuristic had a guess; confirm it
			// instead of giving up.
			p := newPendingFromDecision(fast)
			p.Suggestion = text
			question := confirmQuestion(fast)
			p.LastQuestion = question
			return &turnOutcome{speak: question, pending: p, userText: text}
		}
		return &turnOutcome{speak: repromptGeneric, userText: text}
	}
	return c.applyDecision(ctx, sessionID, text, decision)
}

func (c *Controller) applyDecision(ctx context.Context, sessionID, text string, d *intent.Decision) *turnOutcome {
	switch d.Kind {
	case intent.KindAction:
		if d.NeedsClarification || len(d.MissingParams()) > 0 {
			p := newPendingFromDecision(d)
			question := d.Question
			if question == "" {
				question = p.NextQuestion()
			}
			p.LastQuestion = question
			return &turnOutcome{speak: question, pending: p, userText: text}
		}
		p := newPendingFromDecision(d)
		return c.executePending(ctx, sessionID, text, p)
	case intent.KindClarify:
		question := d.Question
		if question == "" {
			question = repromptGeneric
		}
		var p *PendingAction
		if d.Action != intent.ActionNone {
			p = newPendingFromDecision(d)
			p.LastQuestion = question
		}
		return &turnOutcome{speak: question, pending: p, userText: text}
	case intent.KindChat:
		reply := strings.TrimSpace(d.Reply)
		if reply == "" {
			reply = c.chatReply(ctx, sessionID, text)
		}
		return &turnOutcome{speak: reply, userText: text}
	default:
		return &turnOutcome{speak: repromptGeneric, userText: text}
	}
}

// executePending runs a fully-specified action, resolving contact references
// first for calls.
func (c *Controller) executePending(ctx context.Context, sessionID, text string, pending *PendingAction) *turnOutcome {
	if pending.Action == intent.ActionCallContact && pending.Collected["number"] == "" {
		if out := c.resolveCallContact(ctx, text, pending); out != nil {
			return out
		}
	}

	action := pending.ToAction()
	result, err := c.executor.Execute(ctx, action, c.contextSummary(ctx, sessionID, pending))
	if err != nil {
		log.Printf("action %s failed: %v", action.Type, err)
		return &turnOutcome{speak: apologyGeneric, userText: text, action: string(action.Type)}
	}

	out := &turnOutcome{userText: text, action: string(action.Type)}
	switch result.Kind {
	case actions.ResultSuccess, "":
		out.speak = result.Text
		out.endReason = EndReasonCompleted
	case actions.ResultSuccessWithFeedback:
		out.speak = result.Text
	case actions.ResultAskUser:
		if pending.Action == intent.ActionCallContact && pending.Collected["number"] == "" {
			pending.Missing = append(pending.Missing, "number")
		}
		pending.LastQuestion = result.Text
		out.speak = result.Text
		out.pending = pending
	case actions.ResultEndSession:
		out.speak = result.Text
		out.endReason = EndReasonCompleted
	case actions.ResultFailure:
		out.speak = result.Text
		if out.speak == "" {
			out.speak = apologyGeneric
		}
	default:
		out.speak = result.Text
	}
	return out
}

// resolveCallContact turns a spoken name into a directory entry. A nil return
// means the pending action now carries the resolved number and execution
// should proceed.
func (c *Controller) resolveCallContact(ctx context.Context, text string, pending *PendingAction) *turnOutcome {
	name := pending.Collected["contact"]
	if c.resolver == nil || name == "" {
		return nil
	}

	match, err := c.resolver.ResolveWithKeywords(ctx, name, contacts.Keywords(text))
	if err != nil {
		if errors.Is(err, contacts.ErrPermissionDenied) {
			return &turnOutcome{speak: apologyContacts, endReason: EndReasonPermissionDenied, userText: text}
		}
		log.Printf("contact resolution failed: %v", err)
		return &turnOutcome{speak: apologyGeneric, userText: text}
	}

	switch match.Kind {
	case contacts.MatchExact:
		pending.Supply("contact", match.Candidate.DisplayName)
		pending.Supply("number", match.Candidate.Number)
		return nil
	case contacts.MatchMultiple:
		pending.Candidates = match.Candidates
		question := "I found " + candidateNames(match.Candidates) + ". Which one did you mean?"
		pending.LastQuestion = question
		return &turnOutcome{speak: question, pending: pending, userText: text}
	case contacts.MatchPermissionDenied:
		return &turnOutcome{speak: apologyContacts, endReason: EndReasonPermissionDenied, userText: text}
	default:
		delete(pending.Collected, "contact")
		pending.Missing = []string{"contact"}
		question := fmt.Sprintf("I couldn't find %s in your contacts. Who should I call?", name)
		pending.LastQuestion = question
		return &turnOutcome{speak: question, pending: pending, userText: text}
	}
}

// chatReply asks the conversational model for open chat when the interpreter
// produced no reply of its own.
func (c *Controller) chatReply(ctx context.Context, sessionID, text string) string {
	if c.responder == nil {
		return repromptGeneric
	}
	prompt := text
	if summary := c.contextSummary(ctx, sessionID, nil); summary != "" {
		prompt = summary + "\nuser: " + text
	}
	reply, err := c.responder.Respond(ctx, prompt)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("responder failed: %v", err)
		}
		return repromptGeneric
	}
	if strings.TrimSpace(reply) == "" {
		return repromptGeneric
	}
	return reply
}

// contextSummary renders recent turns plus any pending slot-filling state for
// the remote passes. Best effort with a short deadline; an empty summary is
// always acceptable.
func (c *Controller) contextSummary(ctx context.Context, sessionID string, pending *PendingAction) string {
	var parts []string
	if c.store != nil {
		hctx, cancel := context.WithTimeout(ctx, historyContextTimeout)
		turns, err := c.store.RecentForSession(hctx, sessionID, c.opts.HistoryLimit)
		cancel()
		if err == nil && len(turns) > 0 {
			parts = append(parts, history.Summarize(turns))
		}
	}
	if pending != nil {
		parts = append(parts, pending.Summary())
	}
	return strings.Join(parts, "\n")
}

func askNext(text string, pending *PendingAction) *turnOutcome {
	question := pending.NextQuestion()
	pending.LastQuestion = question
	return &turnOutcome{speak: question, pending: pending, userText: text}
}

func confirmQuestion(d *intent.Decision) string {
	switch d.Action {
	case intent.ActionCallContact:
		if contact := d.Param("contact"); contact != "" {
			return fmt.Sprintf("Should I call %s?", contact)
		}
		return "Did you want me to make a call?"
	case intent.ActionPlayMedia:
		if query := d.Param("query"); query != "" {
			return fmt.Sprintf("Should I play %s?", query)
		}
		return "Did you want me to play something?"
	case intent.ActionSetAlarm:
		return "Did you want me to set an alarm?"
	case intent.ActionUpdateSetting:
		return "Did you want me to change a setting?"
	default:
		return repromptGeneric
	}
}

func candidateNames(list []contacts.Candidate) string {
	names := make([]string, 0, len(list))
	for _, cand := range list {
		names = append(names, cand.DisplayName)
	}
	switch len(names) {
	case 0:
		return "no one"
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
