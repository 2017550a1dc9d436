package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	JSONResponse string
	TextResponse string
	JSONErr      error
	TextErr      error

	LastSystem string
	LastPrompt string
	Calls      int
}

func (m *MockClient) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	return m.JSONResponse, m.JSONErr
}

func (m *MockClient) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	return m.TextResponse, m.TextErr
}
