package pipeline_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/mws/internal/pipeline"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRetryPolicy_Decide(t *testing.T) {
	t.Parallel()

	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	policy := pipeline.DefaultRetryPolicy()
	policy.Now = func() time.Time { return now }

	throttled := &mws.Error{Kind: mws.KindRequestThrottled}
	withInterval := &mws.OperationDescriptor{RecoveryInterval: 5 * time.Second}
	noInterval := &mws.OperationDescriptor{}

	tests := []struct {
		name      string
		desc      *mws.OperationDescriptor
		attempt   int
		failure   *mws.Error
		header    http.Header
		wantDelay time.Duration
		wantRetry bool
	}{
		{"declared interval", withInterval, 1, throttled, nil, 5 * time.Second, true},
		{"second attempt", withInterval, 2, throttled, nil, 5 * time.Second, true},
		{"ceiling reached", withInterval, 3, throttled, nil, 0, false},
		{"no interval", noInterval, 1, throttled, nil, 0, false},
		{"not throttled", withInterval, 1, &mws.Error{Kind: mws.KindServiceUnavailable}, nil, 0, false},
		{"nil failure", withInterval, 1, nil, nil, 0, false},
		{"retry-after seconds", withInterval, 1, throttled, http.Header{"Retry-After": {"12"}}, 12 * time.Second, true},
		{"retry-after capped", withInterval, 1, throttled, http.Header{"Retry-After": {"999999"}}, time.Hour, true},
		{"retry-after date", withInterval, 1, throttled,
			http.Header{"Retry-After": {now.Add(30 * time.Second).Format(http.TimeFormat)}}, 30 * time.Second, true},
		{"retry-after past date", withInterval, 1, throttled,
			http.Header{"Retry-After": {now.Add(-time.Minute).Format(http.TimeFormat)}}, 5 * time.Second, true},
		{"retry-after garbage", withInterval, 1, throttled, http.Header{"Retry-After": {"soon"}}, 5 * time.Second, true},
		{"retry-after zero", withInterval, 1, throttled, http.Header{"Retry-After": {"0"}}, 5 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			delay, retry := policy.Decide(tt.desc, tt.attempt, tt.failure, tt.header)
			assert.Equal(t, tt.wantRetry, retry)
			assert.Equal(t, tt.wantDelay, delay)
		})
	}
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	t.Parallel()

	policy := pipeline.DefaultRetryPolicy()
	throttled := &mws.Error{Kind: mws.KindRequestThrottled}
	desc := &mws.OperationDescriptor{RecoveryInterval: time.Second}

	assert.True(t, policy.Exhausted(desc, 3, throttled))
	assert.False(t, policy.Exhausted(desc, 2, throttled))
	assert.False(t, policy.Exhausted(&mws.OperationDescriptor{}, 3, throttled))
	assert.False(t, policy.Exhausted(desc, 3, &mws.Error{Kind: mws.KindInternalError}))
}

func TestSleepContext(t *testing.T) {
	t.Parallel()

	require.NoError(t, pipeline.SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := pipeline.SleepContext(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	require.ErrorIs(t, pipeline.SleepContext(ctx, 0), context.Canceled)
}
