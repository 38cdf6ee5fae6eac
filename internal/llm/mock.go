package llm

import (
	"context"
)

// MockLLM returns canned responses and records the prompts it received.
type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error

	Prompts   []string
	MaxTokens []int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	m.MaxTokens = append(m.MaxTokens, buildOptions(opts).MaxTokens)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

func (m *MockLLM) Calls() int {
	return len(m.Prompts)
}
