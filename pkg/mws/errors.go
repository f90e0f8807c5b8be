package mws

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the class of a failed call.
type ErrorKind string

// Error kinds. Callers branch on these with errors.Is against the Err* values
// below, or with KindOf.
const (
	KindUnknownOperation        ErrorKind = "UnknownOperation"
	KindInputStreamDisconnected ErrorKind = "InputStreamDisconnected"
	KindInvalidParameterValue   ErrorKind = "InvalidParameterValue"
	KindBadRequest              ErrorKind = "BadRequest"
	KindAccessDenied            ErrorKind = "AccessDenied"
	KindInvalidAccessKeyID      ErrorKind = "InvalidAccessKeyId"
	KindSignatureDoesNotMatch   ErrorKind = "SignatureDoesNotMatch"
	KindForbidden               ErrorKind = "Forbidden"
	KindInvalidAddress          ErrorKind = "InvalidAddress"
	KindNotFound                ErrorKind = "NotFound"
	KindInternalError           ErrorKind = "InternalError"
	KindQuotaExceeded           ErrorKind = "QuotaExceeded"
	KindRequestThrottled        ErrorKind = "RequestThrottled"
	KindServiceUnavailable      ErrorKind = "ServiceUnavailable"
	KindUnexpectedResponse      ErrorKind = "UnexpectedResponse"
	KindTransport               ErrorKind = "TransportError"
)

// Error is the single error type produced at the failure boundary of a call.
// It carries the HTTP status and the protocol error code when the service
// returned one.
type Error struct {
	Kind       ErrorKind `json:"kind"                 yaml:"kind"`
	Message    string    `json:"message"              yaml:"message"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Code       string    `json:"code,omitempty"       yaml:"code,omitempty"`
	RequestID  string    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Operation  string    `json:"operation,omitempty"  yaml:"operation,omitempty"`
	Attempts   int       `json:"attempts,omitempty"   yaml:"attempts,omitempty"`
	Cause      error     `json:"-"                    yaml:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := string(e.Kind)
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status: %d)", msg, e.StatusCode)
	}

	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
	}

	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. This lets callers
// write errors.Is(err, mws.ErrRequestThrottled).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}

	return other.Kind == e.Kind
}

// Retryable reports whether the pipeline may resubmit the request.
func (e *Error) Retryable() bool {
	return e.Kind == KindRequestThrottled
}

// Kind sentinels for errors.Is.
var (
	ErrUnknownOperation        = &Error{Kind: KindUnknownOperation}
	ErrInputStreamDisconnected = &Error{Kind: KindInputStreamDisconnected}
	ErrInvalidParameterValue   = &Error{Kind: KindInvalidParameterValue}
	ErrBadRequest              = &Error{Kind: KindBadRequest}
	ErrAccessDenied            = &Error{Kind: KindAccessDenied}
	ErrInvalidAccessKeyID      = &Error{Kind: KindInvalidAccessKeyID}
	ErrSignatureDoesNotMatch   = &Error{Kind: KindSignatureDoesNotMatch}
	ErrForbidden               = &Error{Kind: KindForbidden}
	ErrInvalidAddress          = &Error{Kind: KindInvalidAddress}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrInternalError           = &Error{Kind: KindInternalError}
	ErrQuotaExceeded           = &Error{Kind: KindQuotaExceeded}
	ErrRequestThrottled        = &Error{Kind: KindRequestThrottled}
	ErrServiceUnavailable      = &Error{Kind: KindServiceUnavailable}
	ErrUnexpectedResponse      = &Error{Kind: KindUnexpectedResponse}
	ErrTransport               = &Error{Kind: KindTransport}
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired          = errors.New("config is required")
	ErrRequiredFieldMissing    = errors.New("required field is not set")
	ErrInvalidMarketplace      = errors.New("invalid marketplace id")
	ErrInvalidCredentials      = errors.New("credentials were rejected by the service")
	ErrTooManyIdentifiers      = errors.New("too many identifiers for a single call")
	ErrMissingQuery            = errors.New("missing query")
	ErrUnknownBarcodeType      = errors.New("unknown barcode type")
	ErrReportRequestNotCreated = errors.New("report request was not acknowledged")
	ErrInvalidProduct          = errors.New("product failed validation")
	ErrCacheMiss               = errors.New("key not found")
	ErrCacheEntryExpired       = errors.New("entry expired")
	ErrNATSConfigRequired      = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType    = errors.New("unsupported cache type")
)

// KindOf returns the kind of err, or the empty kind when err is not an *Error.
func KindOf(err error) ErrorKind {
	var mwsErr *Error
	if errors.As(err, &mwsErr) {
		return mwsErr.Kind
	}

	return ""
}

// IsThrottled checks if the error is a throttling rejection.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrRequestThrottled)
}

// IsNotFound checks if the error is a not found error of either flavour.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidAddress)
}

// IsAccessDenied checks if the service rejected the credentials or signature.
func IsAccessDenied(err error) bool {
	switch KindOf(err) {
	case KindAccessDenied, KindInvalidAccessKeyID, KindSignatureDoesNotMatch, KindForbidden:
		return true
	default:
		return false
	}
}

// ValidationError is returned when a feed row fails local validation.
type ValidationError struct {
	Row    int               `json:"row"    yaml:"row"`
	Errors map[string]string `json:"errors" yaml:"errors"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: row %d has %d invalid field(s)", ErrInvalidProduct, e.Row, len(e.Errors))
}

// Unwrap allows errors.Is(err, ErrInvalidProduct).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidProduct
}
