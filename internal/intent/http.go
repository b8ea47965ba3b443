package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPInterpreter forwards utterances to a remote intent classifier. The fast
// pass is served locally by Rules; only the accurate pass goes over the wire.
type HTTPInterpreter struct {
	url    string
	rules  *Rules
	client *http.Client
}

func NewHTTPInterpreter(url string) *HTTPInterpreter {
	return &HTTPInterpreter{
		url:   strings.TrimSpace(url),
		rules: NewRules(),
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (h *HTTPInterpreter) InterpretFast(text string) (*Decision, bool) {
	return h.rules.InterpretFast(text)
}

type interpretRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

func (h *HTTPInterpreter) InterpretAccurate(ctx context.Context, text, contextSummary string) (*Decision, error) {
	payload, err := json.Marshal(interpretRequest{Text: text, Context: contextSummary})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("interpreter http status %d: %s", res.StatusCode, string(body))
	}

	var d Decision
	if err := json.NewDecoder(res.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	normalizeDecision(&d)
	return &d, nil
}

func normalizeDecision(d *Decision) {
	switch d.Kind {
	case KindAction, KindChat, KindClarify, KindUnknown:
	default:
		d.Kind = KindUnknown
	}
	if d.Kind != KindAction {
		d.Action = ActionNone
	}
	if d.Confidence < 0 {
		d.Confidence = 0
	}
	if d.Confidence > 1 {
		d.Confidence = 1
	}
}
