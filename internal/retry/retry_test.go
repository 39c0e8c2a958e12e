package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcal/internal/errs"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return nil
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Classification
	}{
		{"nil", nil, Permanent},
		{"typed retryable", errs.New(errs.CodeRetryableCall, "service unavailable"), Retryable},
		{"typed permanent", errs.New(errs.CodePermanentCall, "rejected"), Permanent},
		{"timeout text", errors.New("request Timeout after 30s"), Retryable},
		{"deadline text", errors.New("context deadline exceeded"), Retryable},
		{"connection text", errors.New("connection reset by peer"), Retryable},
		{"invalid key text", errors.New("400: API_KEY_INVALID"), Permanent},
		{"quota text", errors.New("429: quota exceeded for project"), Permanent},
		{"unauthorized text", errors.New("401 Unauthorized"), Permanent},
		{"unknown text", errors.New("something odd happened"), Permanent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestClassifyPermanentWinsOverRetryableText(t *testing.T) {
	// Both pattern lists match; the permanent list is checked first.
	err := errors.New("quota exceeded, connection closed")
	assert.Equal(t, Permanent, Classify(err))
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	op := func(context.Context) error {
		calls++
		if calls <= 3 {
			return errors.New("service unavailable")
		}
		return nil
	}

	var delays []time.Duration
	p := Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxBackoff: 30 * time.Second}.
		WithSleep(noSleep(&delays))

	err := p.Do(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
}

func TestDoExhaustsAfterMaxAttempts(t *testing.T) {
	calls := 0
	op := func(context.Context) error {
		calls++
		return errors.New("timeout")
	}

	p := Policy{MaxAttempts: 3, BaseDelay: time.Second}.WithSleep(noSleep(nil))
	err := p.Do(context.Background(), op)

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 3, ex.Attempts)
	assert.False(t, ex.Canceled)
	assert.EqualError(t, ex.Last, "timeout")
}

func TestDoPermanentFailsImmediately(t *testing.T) {
	calls := 0
	sentinel := errs.New(errs.CodePermanentCall, "invalid api key")
	op := func(context.Context) error {
		calls++
		return sentinel
	}

	p := Policy{MaxAttempts: 5, BaseDelay: time.Second}.WithSleep(noSleep(nil))
	err := p.Do(context.Background(), op)

	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, sentinel)
	var ex *ExhaustedError
	assert.False(t, errors.As(err, &ex), "permanent error must not be wrapped as exhaustion")
}

func TestDoSingleAttempt(t *testing.T) {
	calls := 0
	op := func(context.Context) error {
		calls++
		return errors.New("timeout")
	}

	p := Policy{MaxAttempts: 1}.WithSleep(noSleep(nil))
	err := p.Do(context.Background(), op)

	assert.Equal(t, 1, calls)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 1, ex.Attempts)
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	calls := 0
	op := func(context.Context) error {
		calls++
		return errors.New("timeout")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: time.Second}.
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		})

	err := p.Do(ctx, op)
	assert.Equal(t, 1, calls)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.True(t, ex.Canceled)
	assert.Equal(t, 1, ex.Attempts)
}

func TestDelayCapped(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, MaxBackoff: 10 * time.Second}
	got := make([]time.Duration, 0, 5)
	for i := 1; i <= 5; i++ {
		got = append(got, p.Delay(i))
	}
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second,
	}, got)
}

func TestExhaustedErrorMessage(t *testing.T) {
	ex := &ExhaustedError{Attempts: 3, Last: errors.New("timeout"), LastClass: Retryable}
	assert.Equal(t, "retries exhausted after 3 attempt(s), last error retryable: timeout", ex.Error())

	canceled := &ExhaustedError{Attempts: 2, Last: fmt.Errorf("timeout"), Canceled: true}
	assert.Contains(t, canceled.Error(), "canceled after 2 attempt(s)")
}
