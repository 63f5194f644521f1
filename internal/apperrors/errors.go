package apperrors

import (
	"errors"
)

var (
	// ErrNotConfigured means a provider has no client credentials. Terminal
	// for that provider until the operator configures it.
	ErrNotConfigured = errors.New("provider is not configured")

	// ErrAuthFailure means a code exchange or token refresh was rejected.
	ErrAuthFailure = errors.New("provider rejected authentication")

	ErrCredentialNotFound  = errors.New("credential does not exist")
	ErrApplicationNotFound = errors.New("application does not exist")
	ErrMessageNotFound     = errors.New("message record does not exist")
	ErrFollowUpNotFound    = errors.New("follow-up does not exist")
	ErrUnknownProvider     = errors.New("unknown email provider")
	ErrUnknownJob          = errors.New("unknown scheduled job")
	ErrInvalidStatus       = errors.New("invalid application status")
)
