package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/telemetry"
)

// DefaultRateLimitCooldown is the fixed wait after a rate-limit failure.
const DefaultRateLimitCooldown = 60 * time.Second

// Completer sends one request to the model and returns its text. Rate-limit
// failures must carry domain.ErrCodeRateLimited.
type Completer interface {
	Complete(ctx context.Context, req domain.TaskRequest) (string, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RateLimitObserver is told about every cooldown before it starts.
type RateLimitObserver func(req domain.TaskRequest, wait int, cooldown time.Duration)

// RetryConfig controls the rate-limit policy.
type RetryConfig struct {
	Cooldown time.Duration
	// MaxRateLimitRetries caps the cooldowns per request. 0 means retry
	// until success or a non-rate-limit failure.
	MaxRateLimitRetries int
	Sleep               Sleeper
	OnRateLimited       RateLimitObserver
}

// DefaultRetryConfig waits DefaultRateLimitCooldown with no retry cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Cooldown: DefaultRateLimitCooldown}
}

type retryState int

const (
	stateAttempting retryState = iota
	stateWaiting
)

// RetryController runs one logical model call per request, waiting out
// rate limits and failing fast on everything else.
type RetryController struct {
	completer Completer
	cfg       RetryConfig
}

func NewRetryController(completer Completer, cfg RetryConfig) *RetryController {
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &RetryController{completer: completer, cfg: cfg}
}

// ClassifyFailure maps a Completer error onto the retry state machine input.
func ClassifyFailure(err error) domain.FailureClass {
	switch {
	case err == nil:
		return domain.FailureNone
	case domain.IsCode(err, domain.ErrCodeRateLimited):
		return domain.FailureRateLimited
	default:
		return domain.FailureFatal
	}
}

// Do executes req. On success the result is returned with its attempt and
// wait counts. A non-rate-limit failure, an exhausted retry cap or a cancelled
// ctx returns a failure result together with the error.
func (c *RetryController) Do(ctx context.Context, req domain.TaskRequest) (domain.TaskResult, error) {
	result := domain.TaskResult{ChunkIndex: req.ChunkIndex}
	fail := func(err error) (domain.TaskResult, error) {
		result.Status = domain.ResultStatusFailure
		result.Err = err
		return result, err
	}

	var lastErr error
	state := stateAttempting
	for {
		switch state {
		case stateAttempting:
			if err := ctx.Err(); err != nil {
				return fail(cancelled(err))
			}
			result.Attempts++
			text, err := c.completer.Complete(ctx, req)
			switch ClassifyFailure(err) {
			case domain.FailureNone:
				result.Status = domain.ResultStatusSuccess
				result.Text = text
				return result, nil
			case domain.FailureRateLimited:
				lastErr = err
				state = stateWaiting
			default:
				if ctxErr := ctx.Err(); ctxErr != nil {
					return fail(cancelled(ctxErr))
				}
				if domain.IsCode(err, domain.ErrCodeRemote) {
					return fail(err)
				}
				return fail(domain.NewDomainErrorWithCause(domain.ErrCodeRemote, domain.ErrFatalRemote.Message, err))
			}

		case stateWaiting:
			if c.cfg.MaxRateLimitRetries > 0 && result.RateLimitWaits >= c.cfg.MaxRateLimitRetries {
				return fail(domain.NewDomainErrorWithCause(domain.ErrCodeRemote, domain.ErrFatalRemote.Message,
					fmt.Errorf("rate limit persisted after %d retries: %w", result.RateLimitWaits, lastErr)))
			}
			result.RateLimitWaits++
			c.warn(ctx, req, result.RateLimitWaits)
			if err := c.cfg.Sleep(ctx, c.cfg.Cooldown); err != nil {
				return fail(cancelled(err))
			}
			state = stateAttempting
		}
	}
}

func (c *RetryController) warn(ctx context.Context, req domain.TaskRequest, wait int) {
	msg := fmt.Sprintf("Rate limit reached on chunk %d. Waiting %s before retrying (retry %d)...",
		req.ChunkIndex+1, c.cfg.Cooldown, wait)
	log.Print(msg)
	telemetry.AddBreadcrumb(ctx, "llm.rate_limit", msg)
	if c.cfg.OnRateLimited != nil {
		c.cfg.OnRateLimited(req, wait, c.cfg.Cooldown)
	}
}

func cancelled(err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeCancelled, domain.ErrRunCancelled.Message, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
