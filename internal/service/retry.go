package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fadilmartias/cv-evaluator/internal/apperror"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// RetryPolicy bounds provider calls: Attempts tries in total, waiting
// BaseDelay*2^(n-1) after the n-th failure, each try limited to Timeout.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Timeout   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  3,
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
		Timeout:   30 * time.Second,
	}
}

// Delay is the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusError is an HTTP-level failure from a provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Body)
}

// errPermanent marks a failure that must not be retried.
type errPermanent struct{ err error }

func (e *errPermanent) Error() string { return e.err.Error() }
func (e *errPermanent) Unwrap() error { return e.err }

func permanent(err error) error { return &errPermanent{err: err} }

func statusRetryable(code int) bool {
	switch {
	case code == 408, code == 429:
		return true
	case code >= 500:
		return true
	default:
		return false
	}
}

// isRetryableError reports whether err looks transient.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var perm *errPermanent
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusRetryable(statusErr.Code)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusRetryable(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return statusRetryable(apiErrPtr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}

// withRetry runs fn under the policy. Every failure path returns
// *apperror.LLMCallError with the number of attempts made.
func withRetry[T any](ctx context.Context, p RetryPolicy, provider string, log *zap.Logger, sleep sleepFunc, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &apperror.LLMCallError{Provider: provider, Attempts: attempt - 1, Err: err}
		}

		result, err := callOnce(ctx, p.Timeout, fn)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryableError(err) {
			log.Warn("llm call failed, not retrying",
				zap.String("provider", provider),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return zero, &apperror.LLMCallError{Provider: provider, Attempts: attempt, Err: err}
		}

		if attempt == attempts {
			break
		}
		delay := p.Delay(attempt)
		log.Warn("llm call failed, retrying",
			zap.String("provider", provider),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, &apperror.LLMCallError{Provider: provider, Attempts: attempt, Err: err}
		}
	}
	return zero, &apperror.LLMCallError{Provider: provider, Attempts: attempts, Err: lastErr}
}

func callOnce[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
