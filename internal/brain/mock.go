package brain

import (
	"context"
	"strings"
	"sync"
)

// MockResponder answers with canned phrases. Acknowledgement prompts get a
// short "Yes?"; anything else echoes a scripted reply or a generic line.
type MockResponder struct {
	mu       sync.Mutex
	scripted map[string]string
	err      error
	prompts  []string
}

func NewMockResponder() *MockResponder {
	return &MockResponder{scripted: make(map[string]string)}
}

func (m *MockResponder) Script(promptContains, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted[strings.ToLower(promptContains)] = reply
}

func (m *MockResponder) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockResponder) Respond(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	lower := strings.ToLower(prompt)
	for needle, reply := range m.scripted {
		if strings.Contains(lower, needle) {
			return reply, nil
		}
	}
	if prompt == AcknowledgePrompt {
		return "Yes?", nil
	}
	return "Okay.", nil
}

func (m *MockResponder) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
