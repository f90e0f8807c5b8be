package pipeline

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// Sleeper suspends the calling goroutine for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryPolicy decides whether a throttled call is resubmitted.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt.
	MaxAttempts int
	// MaxRetryAfter caps a server-advised delay.
	MaxRetryAfter time.Duration
	// Now is used to interpret HTTP-date Retry-After values.
	Now func() time.Time
}

// DefaultRetryPolicy returns the policy used by the pipeline.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:   constants.MaxThrottleAttempts,
		MaxRetryAfter: constants.MaxRetryAfter,
		Now:           time.Now,
	}
}

// Decide returns the delay before the next attempt and whether there should
// be one. attempt is the number of attempts already made.
func (p *RetryPolicy) Decide(desc *mws.OperationDescriptor, attempt int, failure *mws.Error, header http.Header) (time.Duration, bool) {
	if failure == nil || !failure.Retryable() {
		return 0, false
	}

	if desc.RecoveryInterval <= 0 || attempt >= p.MaxAttempts {
		return 0, false
	}

	if delay := p.retryAfter(header.Get("Retry-After")); delay > 0 {
		return delay, true
	}

	return desc.RecoveryInterval, true
}

// Exhausted reports whether a throttled failure ended because the ceiling was
// reached, as opposed to the operation not being retryable at all.
func (p *RetryPolicy) Exhausted(desc *mws.OperationDescriptor, attempt int, failure *mws.Error) bool {
	return failure != nil && failure.Retryable() && desc.RecoveryInterval > 0 && attempt >= p.MaxAttempts
}

func (p *RetryPolicy) retryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}

		return min(time.Duration(seconds)*time.Second, p.MaxRetryAfter)
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	delay := at.Sub(now())
	if delay <= 0 {
		return 0
	}

	return min(delay, p.MaxRetryAfter)
}
