package llm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyResponse indicates the generation service returned no usable text.
// An empty response is fatal; a truncated-but-non-empty response is not.
var ErrEmptyResponse = errors.New("generation service returned an empty response")

// snippetLen bounds the diagnostic excerpt carried by MalformedOutputError.
const snippetLen = 200

// MalformedOutputError indicates the structured-output parser exhausted all
// fallback strategies on a response.
type MalformedOutputError struct {
	Snippet string
	Cause   error
}

// Error implements the error interface.
func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed structured output: %v (response starts: %q)", e.Cause, e.Snippet)
}

// Unwrap returns the underlying parse error.
func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// newMalformedOutputError builds a MalformedOutputError carrying the first
// 200 characters of the raw response for diagnostics.
func newMalformedOutputError(raw string, cause error) (err *MalformedOutputError) {
	snippet := raw
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	err = &MalformedOutputError{Snippet: snippet, Cause: cause}
	return err
}

// RateLimitError indicates a rate-limit-class transport failure, retried
// with exponential backoff.
type RateLimitError struct {
	Cause error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by generation service: %v", e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// isRateLimited reports whether err belongs to the rate-limit retry class.
func isRateLimited(err error) (limited bool) {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	msg := strings.ToLower(err.Error())
	limited = strings.Contains(msg, "rate_limit") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
	return limited
}
