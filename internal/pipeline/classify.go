package pipeline

import (
	"net/http"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// statusCodes maps (status, protocol code) pairs with a specific kind.
var statusCodes = map[int]map[string]mws.ErrorKind{
	http.StatusBadRequest: {
		"InputStreamDisconnected": mws.KindInputStreamDisconnected,
		"InvalidParameterValue":   mws.KindInvalidParameterValue,
	},
	http.StatusForbidden: {
		"InvalidAccessKeyId":    mws.KindInvalidAccessKeyID,
		"SignatureDoesNotMatch": mws.KindSignatureDoesNotMatch,
	},
	http.StatusNotFound: {
		"InvalidAddress": mws.KindInvalidAddress,
	},
	http.StatusServiceUnavailable: {
		"QuotaExceeded":    mws.KindQuotaExceeded,
		"RequestThrottled": mws.KindRequestThrottled,
	},
}

// Classify maps an HTTP status and protocol error code to an error. It is a
// pure function and returns nil for 2xx statuses.
func Classify(status int, code, message string) *mws.Error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	return &mws.Error{
		Kind:       classifyKind(status, code),
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func classifyKind(status int, code string) mws.ErrorKind {
	if kind, ok := statusCodes[status][code]; ok {
		return kind
	}

	switch {
	case status == http.StatusUnauthorized:
		return mws.KindAccessDenied
	case status == http.StatusForbidden:
		return mws.KindForbidden
	case status == http.StatusNotFound:
		return mws.KindNotFound
	case status == http.StatusServiceUnavailable:
		return mws.KindServiceUnavailable
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return mws.KindBadRequest
	case status >= http.StatusInternalServerError && status < 600:
		return mws.KindInternalError
	default:
		return mws.KindUnexpectedResponse
	}
}

// TransportError wraps a failure that produced no response.
func TransportError(operation string, cause error) *mws.Error {
	return &mws.Error{
		Kind:      mws.KindTransport,
		Message:   "request failed before a response was received",
		Operation: operation,
		Cause:     cause,
	}
}
