package llm

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
)

// RetryPolicy bounds the client's retry loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the fixed wait for non-rate-limit transient failures and the
	// base of the exponential backoff for rate-limit failures.
	Delay time.Duration
}

// Client wraps a ChatModel with request pacing, bounded retry, and
// empty/truncated response handling.
type Client struct {
	model   ChatModel
	retry   RetryPolicy
	limiter *rate.Limiter

	// sleep is swappable in tests.
	sleep func(d time.Duration)
}

// NewClient creates a generation client. rpm and burst bound the request
// rate; zero values disable pacing.
func NewClient(model ChatModel, retry RetryPolicy, rpm, burst int) (client *Client) {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.Delay <= 0 {
		retry.Delay = 2 * time.Second
	}

	var limiter *rate.Limiter
	if rpm > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
	}

	client = &Client{
		model:   model,
		retry:   retry,
		limiter: limiter,
		sleep:   time.Sleep,
	}
	return client
}

// Generate issues one completion under the retry policy and returns the
// response text.
//
// A blank response is the only fatal response shape (ErrEmptyResponse). A
// response truncated at the output budget is returned as-is when non-empty,
// with a warning. Rate-limit-class failures are retried with exponential
// backoff; other failures get a fixed delay; the last failure is returned
// verbatim once attempts are exhausted.
func (c *Client) Generate(ctx context.Context, req CompletionRequest) (text string, err error) {
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			logger.Log.WithField("attempt", attempt+1).Warn("retrying generation call")
		}

		text, err = c.generateOnce(ctx, req)
		if err == nil {
			return text, err
		}
		if errors.Is(err, ErrEmptyResponse) {
			// Retrying an empty response is cheap and occasionally works.
			c.waitFixed(ctx, attempt)
			continue
		}
		if isRateLimited(err) {
			if attempt < c.retry.MaxAttempts-1 {
				backoff := c.retry.Delay * (1 << attempt)
				logger.Log.WithField("backoff", backoff.String()).Warn("rate limited, backing off")
				if !c.wait(ctx, backoff) {
					return text, ctx.Err()
				}
			}
			continue
		}
		c.waitFixed(ctx, attempt)
	}

	return text, err
}

// GenerateStructured issues one completion and decodes the response text
// into v via the structured-output parser.
func (c *Client) GenerateStructured(ctx context.Context, req CompletionRequest, v any) (err error) {
	if req.System == "" {
		req.System = "You respond with strict JSON only: no explanations, no markdown, no annotations."
	}

	var text string
	text, err = c.Generate(ctx, req)
	if err != nil {
		return err
	}

	err = DecodeStructured(text, v)
	return err
}

// generateOnce performs a single paced completion call.
func (c *Client) generateOnce(ctx context.Context, req CompletionRequest) (text string, err error) {
	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			err = errors.Wrap(err, "rate limiter wait failed")
			return text, err
		}
	}

	var resp CompletionResponse
	resp, err = c.model.Complete(ctx, req)
	if err != nil {
		return text, err
	}

	logger.Log.WithFields(map[string]any{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}).Debug("generation call finished")

	text = resp.Text
	if resp.FinishReason == FinishTruncated {
		if strings.TrimSpace(text) != "" {
			logger.Log.WithField("max_tokens", req.MaxTokens).Warn("response truncated at output budget, returning partial text")
			return text, nil
		}
		err = errors.Wrapf(ErrEmptyResponse, "finish reason %s", resp.FinishReason)
		return text, err
	}

	if strings.TrimSpace(text) == "" {
		err = errors.Wrapf(ErrEmptyResponse, "finish reason %s", resp.FinishReason)
		return text, err
	}

	return text, err
}

// wait sleeps for d unless ctx is done first.
func (c *Client) wait(ctx context.Context, d time.Duration) (ok bool) {
	if ctx.Err() != nil {
		return false
	}
	c.sleep(d)
	ok = true
	return ok
}

// waitFixed applies the fixed transient-failure delay between attempts.
func (c *Client) waitFixed(ctx context.Context, attempt int) {
	if attempt < c.retry.MaxAttempts-1 {
		c.wait(ctx, c.retry.Delay)
	}
}
