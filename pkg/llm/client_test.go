package llm

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// newTestClient builds a client with instant sleeps and no pacing.
func newTestClient(model ChatModel, attempts int) (client *Client) {
	client = NewClient(model, RetryPolicy{MaxAttempts: attempts, Delay: time.Millisecond}, 0, 0)
	client.sleep = func(time.Duration) {}
	return client
}

func TestGenerate(t *testing.T) {
	mock := &MockModel{Responses: []CompletionResponse{
		{Text: "hello", FinishReason: FinishCompleted},
	}}
	client := newTestClient(mock, 3)

	text, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("Expected 'hello', got '%s'", text)
	}
	if len(mock.Requests) != 1 {
		t.Errorf("Expected 1 call, got %d", len(mock.Requests))
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	// Blank text is the one fatal response shape; it is retried under the
	// policy and the final failure carries ErrEmptyResponse.
	mock := &MockModel{Responses: []CompletionResponse{
		{Text: "", FinishReason: FinishCompleted},
		{Text: "   \n", FinishReason: FinishCompleted},
		{Text: "", FinishReason: FinishCompleted},
	}}
	client := newTestClient(mock, 3)

	_, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error for empty responses, got nil")
	}
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
	if len(mock.Requests) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(mock.Requests))
	}
}

func TestGenerateTruncatedPartialReturned(t *testing.T) {
	// Truncation alone is not fatal: non-empty partial text is returned.
	mock := &MockModel{Responses: []CompletionResponse{
		{Text: "partial output", FinishReason: FinishTruncated},
	}}
	client := newTestClient(mock, 3)

	text, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi", MaxTokens: 100})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "partial output" {
		t.Errorf("Expected partial text back, got '%s'", text)
	}
}

func TestGenerateTruncatedEmptyFatal(t *testing.T) {
	mock := &MockModel{Responses: []CompletionResponse{
		{Text: "", FinishReason: FinishTruncated},
		{Text: "", FinishReason: FinishTruncated},
	}}
	client := newTestClient(mock, 2)

	_, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse for empty truncated response, got %v", err)
	}
}

// flakyModel fails with err for failures calls, then succeeds.
type flakyModel struct {
	failures int
	err      error
	calls    int
}

func (m *flakyModel) Complete(_ context.Context, _ CompletionRequest) (resp CompletionResponse, err error) {
	m.calls++
	if m.calls <= m.failures {
		err = m.err
		return resp, err
	}
	resp = CompletionResponse{Text: "recovered", FinishReason: FinishCompleted}
	return resp, err
}

func TestGenerateRateLimitBackoff(t *testing.T) {
	model := &flakyModel{failures: 2, err: &RateLimitError{Cause: errors.New("429 too many requests")}}
	client := NewClient(model, RetryPolicy{MaxAttempts: 3, Delay: time.Second}, 0, 0)

	var waits []time.Duration
	client.sleep = func(d time.Duration) { waits = append(waits, d) }

	text, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "recovered" {
		t.Errorf("Expected 'recovered', got '%s'", text)
	}

	// Exponential backoff doubles the base delay per attempt.
	if len(waits) != 2 {
		t.Fatalf("Expected 2 backoff waits, got %d", len(waits))
	}
	if waits[0] != time.Second || waits[1] != 2*time.Second {
		t.Errorf("Expected backoffs 1s, 2s, got %v", waits)
	}
}

func TestGenerateRateLimitExhausted(t *testing.T) {
	// The last failure is returned verbatim after exhausting attempts.
	cause := &RateLimitError{Cause: errors.New("429")}
	model := &flakyModel{failures: 10, err: cause}
	client := newTestClient(model, 3)

	_, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("Expected error after exhausting attempts, got nil")
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Errorf("Expected RateLimitError, got %v", err)
	}
	if model.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", model.calls)
	}
}

func TestGenerateOtherTransientFixedDelay(t *testing.T) {
	model := &flakyModel{failures: 1, err: errors.New("connection reset")}
	client := NewClient(model, RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}, 0, 0)

	var waits []time.Duration
	client.sleep = func(d time.Duration) { waits = append(waits, d) }

	_, err := client.Generate(context.Background(), CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(waits) != 1 || waits[0] != 2*time.Second {
		t.Errorf("Expected one fixed 2s delay, got %v", waits)
	}
}

func TestGenerateStructured(t *testing.T) {
	mock := &MockModel{Responses: []CompletionResponse{
		{Text: "```json\n{\"job_title\": \"Engineer\", \"key_skills\": [\"Go\"]}\n```"},
	}}
	client := newTestClient(mock, 3)

	var got parseTarget
	err := client.GenerateStructured(context.Background(), CompletionRequest{Prompt: "analyze"}, &got)
	if err != nil {
		t.Fatalf("GenerateStructured failed: %v", err)
	}
	if got.JobTitle != "Engineer" {
		t.Errorf("Expected 'Engineer', got '%s'", got.JobTitle)
	}

	// A default JSON-only system directive is applied when none is set.
	if mock.Requests[0].System == "" {
		t.Error("Expected a default system directive on structured calls")
	}
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", &RateLimitError{Cause: errors.New("x")}, true},
		{"message rate_limit", errors.New("rate_limit_exceeded"), true},
		{"message 429", errors.New("unexpected status 429"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRateLimited(tc.err); got != tc.want {
				t.Errorf("isRateLimited(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
