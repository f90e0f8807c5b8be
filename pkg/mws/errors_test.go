package mws_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *mws.Error
		want string
	}{
		{
			name: "kind only",
			err:  &mws.Error{Kind: mws.KindNotFound},
			want: "NotFound",
		},
		{
			name: "message and status",
			err:  &mws.Error{Kind: mws.KindInvalidParameterValue, Message: "Invalid ASIN", StatusCode: 400},
			want: "InvalidParameterValue: Invalid ASIN (status: 400)",
		},
		{
			name: "retried",
			err:  &mws.Error{Kind: mws.KindRequestThrottled, Message: "Request is throttled", StatusCode: 503, Attempts: 3},
			want: "RequestThrottled: Request is throttled (status: 503) (after 3 attempts)",
		},
		{
			name: "transport cause",
			err:  &mws.Error{Kind: mws.KindTransport, Cause: errors.New("connection refused")},
			want: "TransportError: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *mws.Error
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("listing orders: %w", &mws.Error{Kind: mws.KindTransport, Cause: cause})

	require.ErrorIs(t, err, mws.ErrTransport)
	require.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, mws.ErrInternalError)
	assert.Equal(t, mws.KindTransport, mws.KindOf(err))
	assert.Empty(t, mws.KindOf(cause))
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind         mws.ErrorKind
		throttled    bool
		notFound     bool
		accessDenied bool
	}{
		{mws.KindRequestThrottled, true, false, false},
		{mws.KindNotFound, false, true, false},
		{mws.KindInvalidAddress, false, true, false},
		{mws.KindAccessDenied, false, false, true},
		{mws.KindInvalidAccessKeyID, false, false, true},
		{mws.KindSignatureDoesNotMatch, false, false, true},
		{mws.KindForbidden, false, false, true},
		{mws.KindQuotaExceeded, false, false, false},
		{mws.KindServiceUnavailable, false, false, false},
	}

	for _, tt := range tests {
		err := fmt.Errorf("call: %w", &mws.Error{Kind: tt.kind})

		assert.Equal(t, tt.throttled, mws.IsThrottled(err), tt.kind)
		assert.Equal(t, tt.notFound, mws.IsNotFound(err), tt.kind)
		assert.Equal(t, tt.accessDenied, mws.IsAccessDenied(err), tt.kind)
		assert.Equal(t, tt.throttled, (&mws.Error{Kind: tt.kind}).Retryable(), tt.kind)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("posting products: %w", &mws.ValidationError{
		Row:    2,
		Errors: map[string]string{"price": "must be positive"},
	})

	require.ErrorIs(t, err, mws.ErrInvalidProduct)

	var validation *mws.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, 2, validation.Row)
	assert.Contains(t, err.Error(), "row 2 has 1 invalid field(s)")
}

func TestMarketplaceHost(t *testing.T) {
	t.Parallel()

	host, err := mws.MarketplaceHost(mws.MarketplaceGermany)
	require.NoError(t, err)
	assert.Equal(t, "mws-eu.amazonservices.com", host)

	_, err = mws.MarketplaceHost("unknown")
	require.ErrorIs(t, err, mws.ErrInvalidMarketplace)

	ids := mws.MarketplaceIDs()
	assert.Len(t, ids, 13)
	assert.IsNonDecreasing(t, ids)

	for region, members := range mws.Regions {
		for _, id := range members {
			assert.Contains(t, ids, id, region)
		}
	}
}
