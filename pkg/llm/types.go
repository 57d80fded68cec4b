package llm

import "context"

// Finish reasons reported by a generation service.
const (
	// FinishCompleted means the service finished the response on its own.
	FinishCompleted = "completed"
	// FinishTruncated means the response was cut off at the output budget.
	FinishTruncated = "length"
	// FinishOther covers any other termination reason.
	FinishOther = "other"
)

// CompletionRequest is one call into a text-generation service.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Usage holds token accounting for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the service's answer to one CompletionRequest.
type CompletionResponse struct {
	Text         string
	FinishReason string
	Usage        Usage
}

// ChatModel abstracts the text-generation service so implementations can be
// swapped or mocked. Any service matching this shape is substitutable.
type ChatModel interface {
	Complete(ctx context.Context, req CompletionRequest) (resp CompletionResponse, err error)
}
