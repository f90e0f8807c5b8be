package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentials       = errors.New("no credentials configured, use 'mws configure' to set them")
	ErrUnknownProfile      = errors.New("profile not found in configuration")
	ErrEmptySecret         = errors.New("secret key must not be empty")
	ErrNotInteractive      = errors.New("stdin is not a terminal, pass the value with a flag instead")
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrInvalidParamFlag    = errors.New("parameters must be given as key=value")
	ErrCredentialsRejected = errors.New("credentials were rejected")
)
