// Package retry classifies extraction-call failures and drives a
// bounded exponential-backoff loop around them. The wrapped operation
// must be safe to invoke repeatedly; each attempt is an independent
// call.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventcal/internal/errs"
	"eventcal/internal/log"
)

// Classification says whether an error is worth another attempt.
type Classification int

const (
	// Permanent failures are returned immediately; retrying cannot
	// help (bad credentials, quota, rejected input).
	Permanent Classification = iota
	// Retryable failures are transient; another attempt may succeed.
	Retryable
)

func (c Classification) String() string {
	if c == Retryable {
		return "retryable"
	}
	return "permanent"
}

// permanentPatterns match errors that must not be retried. They are
// checked before the retryable patterns.
var permanentPatterns = []string{
	"invalid api key",
	"api_key_invalid",
	"api key expired",
	"permission denied",
	"quota exceeded",
	"invalid argument",
	"authentication",
	"unauthorized",
}

// retryablePatterns match transient failures.
var retryablePatterns = []string{
	"timeout",
	"deadline exceeded",
	"service unavailable",
	"resource exhausted",
	"connection",
	"network",
	"temporarily unavailable",
}

// Classify inspects err and reports whether it should be retried.
// Typed call errors classify by code; anything else by message
// patterns over the whole error text. Unrecognized errors are
// Permanent: failing closed beats retrying an unknown condition.
func Classify(err error) Classification {
	if err == nil {
		return Permanent
	}

	switch errs.CodeOf(err) {
	case errs.CodeRetryableCall:
		return Retryable
	case errs.CodePermanentCall:
		return Permanent
	}

	msg := strings.ToLower(err.Error())
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return Permanent
		}
	}
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return Retryable
		}
	}
	return Permanent
}

// ExhaustedError reports that every allowed attempt failed. Last is
// the final underlying error and LastClass its classification.
type ExhaustedError struct {
	Attempts  int
	Last      error
	LastClass Classification
	// Canceled is true when the loop stopped because the caller's
	// context ended rather than because attempts ran out.
	Canceled bool
}

func (e *ExhaustedError) Error() string {
	if e.Canceled {
		return fmt.Sprintf("retry canceled after %d attempt(s): %v", e.Attempts, e.Last)
	}
	return fmt.Sprintf("retries exhausted after %d attempt(s), last error %s: %v",
		e.Attempts, e.LastClass, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Policy bounds the retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, first call
	// included. Values below 1 mean a single attempt.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; it doubles
	// per attempt afterwards.
	BaseDelay time.Duration
	// MaxBackoff caps the per-attempt delay. Zero means no cap.
	MaxBackoff time.Duration

	// sleep is injectable for tests; nil uses a context-aware timer.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithSleep returns a copy of the policy using fn to wait between
// attempts. Tests use this to avoid real delays.
func (p Policy) WithSleep(fn func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Delay reports the backoff before the attempt following attempt n
// (1-based): BaseDelay doubled per attempt, capped at MaxBackoff.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do runs op until it succeeds, fails permanently, or attempts run
// out. A Permanent error is returned as-is after the first occurrence.
// Exhaustion returns *ExhaustedError wrapping the last error. An
// attempt already in flight is never interrupted; cancellation only
// prevents the next attempt from being scheduled.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		last = err

		class := Classify(err)
		if class == Permanent {
			log.Debug("permanent failure, not retrying", "attempt", attempt, "err", err)
			return err
		}

		if attempt == maxAttempts {
			break
		}

		delay := p.Delay(attempt)
		log.Debug("transient failure, backing off",
			"attempt", attempt, "max_attempts", maxAttempts, "delay", delay, "err", err)
		if serr := sleep(ctx, delay); serr != nil {
			return &ExhaustedError{Attempts: attempt, Last: last, LastClass: Retryable, Canceled: true}
		}
	}

	return &ExhaustedError{Attempts: maxAttempts, Last: last, LastClass: Retryable}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
