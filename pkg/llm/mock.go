package llm

import "context"

// MockModel is a scripted ChatModel for tests and local dry runs. Each call
// consumes the next queued response; Err short-circuits every call.
type MockModel struct {
	Responses []CompletionResponse
	Err       error
	Requests  []CompletionRequest

	next int
}

// Complete implements ChatModel.
func (m *MockModel) Complete(_ context.Context, req CompletionRequest) (resp CompletionResponse, err error) {
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		err = m.Err
		return resp, err
	}

	if m.next >= len(m.Responses) {
		resp = CompletionResponse{Text: "", FinishReason: FinishCompleted}
		return resp, err
	}

	resp = m.Responses[m.next]
	m.next++
	if resp.FinishReason == "" {
		resp.FinishReason = FinishCompleted
	}

	return resp, err
}
