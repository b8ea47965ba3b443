package intent

import (
	"context"
	"strings"
	"sync"
)

// MockInterpreter serves scripted decisions keyed on normalized utterance
// text, falling back to the heuristic rules and then to a low-confidence chat
// echo. Used by tests and the simulator.
type MockInterpreter struct {
	mu       sync.Mutex
	rules    *Rules
	scripted map[string]Decision
	err      error
	calls    int
}

func NewMockInterpreter() *MockInterpreter {
	return &MockInterpreter{
		rules:    NewRules(),
		scripted: make(map[string]Decision),
	}
}

// Script registers the decision returned for an exact (case-insensitive)
// utterance.
func (m *MockInterpreter) Script(text string, d Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[normalizeKey(text)] = d
}

// Fail makes every accurate interpretation return err until cleared.
func (m *MockInterpreter) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockInterpreter) InterpretFast(text string) (*Decision, bool) {
	return m.rules.InterpretFast(text)
}

func (m *MockInterpreter) InterpretAccurate(_ context.Context, text, _ string) (*Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.scripted[normalizeKey(text)]; ok {
		clone := d
		return &clone, nil
	}
	if d, ok := m.rules.InterpretFast(text); ok {
		return d, nil
	}
	return &Decision{
		Kind:       KindChat,
		Reply:      "I heard: " + strings.TrimSpace(text),
		Confidence: 0.5,
	}, nil
}

func (m *MockInterpreter) AccurateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
