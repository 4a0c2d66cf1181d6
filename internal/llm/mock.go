package llm

import "context"

// MockClient returns scripted responses in order. When the script runs out
// the last response repeats. Used by pipeline tests.
type MockClient struct {
	Responses []string
	Err       error

	// Prompts records every user prompt received, in call order.
	Prompts []string
	// Systems records every system prompt received.
	Systems []string
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.Systems = append(m.Systems, systemPrompt)
	m.Prompts = append(m.Prompts, userPrompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}
