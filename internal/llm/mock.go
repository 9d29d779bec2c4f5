package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Responses se consume en
// orden, una por llamada a Chat; agotada la lista se repite la ultima.
type MockClient struct {
	Responses []ChatResult
	Embedding []float32
	Err       error
	EmbedErr  error

	Calls      [][]ChatMessage
	EmbedCalls []string
	next       int
}

func (m *MockClient) Chat(_ context.Context, messages []ChatMessage, _ []ToolDefinition) (ChatResult, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return ChatResult{}, m.Err
	}
	if len(m.Responses) == 0 {
		return ChatResult{}, nil
	}
	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.next++
	return m.Responses[idx], nil
}

func (m *MockClient) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	m.EmbedCalls = append(m.EmbedCalls, text)
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	return m.Embedding, nil
}
