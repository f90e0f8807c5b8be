package pipeline_test

import (
	"errors"
	"testing"

	"github.com/fivetwenty-io/mws/internal/pipeline"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		code   string
		want   mws.ErrorKind
	}{
		{400, "InputStreamDisconnected", mws.KindInputStreamDisconnected},
		{400, "InvalidParameterValue", mws.KindInvalidParameterValue},
		{400, "MissingParameter", mws.KindBadRequest},
		{400, "", mws.KindBadRequest},
		{401, "", mws.KindAccessDenied},
		{401, "AccessDenied", mws.KindAccessDenied},
		{403, "InvalidAccessKeyId", mws.KindInvalidAccessKeyID},
		{403, "SignatureDoesNotMatch", mws.KindSignatureDoesNotMatch},
		{403, "Other", mws.KindForbidden},
		{404, "InvalidAddress", mws.KindInvalidAddress},
		{404, "", mws.KindNotFound},
		{500, "", mws.KindInternalError},
		{500, "InternalError", mws.KindInternalError},
		{503, "QuotaExceeded", mws.KindQuotaExceeded},
		{503, "RequestThrottled", mws.KindRequestThrottled},
		{503, "", mws.KindServiceUnavailable},
		// Unmapped statuses fall back to their family.
		{409, "Conflict", mws.KindBadRequest},
		{429, "", mws.KindBadRequest},
		{502, "", mws.KindInternalError},
		{504, "RequestThrottled", mws.KindInternalError},
		{302, "", mws.KindUnexpectedResponse},
		{100, "", mws.KindUnexpectedResponse},
		// A code only counts with its own status.
		{400, "RequestThrottled", mws.KindBadRequest},
		{503, "InvalidAddress", mws.KindServiceUnavailable},
	}

	for _, tt := range tests {
		got := pipeline.Classify(tt.status, tt.code, "message")
		require.NotNil(t, got, "%d/%s", tt.status, tt.code)
		assert.Equal(t, tt.want, got.Kind, "%d/%s", tt.status, tt.code)
		assert.Equal(t, tt.status, got.StatusCode)
		assert.Equal(t, tt.code, got.Code)
		assert.Equal(t, "message", got.Message)
	}
}

func TestClassify_Success(t *testing.T) {
	t.Parallel()

	for _, status := range []int{200, 201, 204, 299} {
		assert.Nil(t, pipeline.Classify(status, "", ""), status)
	}
}

func TestClassify_ErrorsIs(t *testing.T) {
	t.Parallel()

	var err error = pipeline.Classify(503, "RequestThrottled", "Request is throttled")

	require.ErrorIs(t, err, mws.ErrRequestThrottled)
	assert.NotErrorIs(t, err, mws.ErrServiceUnavailable)
	assert.True(t, mws.IsThrottled(err))
	assert.Equal(t, mws.KindRequestThrottled, mws.KindOf(err))
	assert.Equal(t, "RequestThrottled: Request is throttled (status: 503)", err.Error())

	var mwsErr *mws.Error
	require.True(t, errors.As(err, &mwsErr))
	assert.True(t, mwsErr.Retryable())
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := pipeline.TransportError("ListOrders", cause)

	require.ErrorIs(t, err, mws.ErrTransport)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "ListOrders", err.Operation)
	assert.False(t, err.Retryable())
}
