package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated: no credential was available before dispatch.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNetworkFailure: the request did not produce an HTTP response.
	ErrNetworkFailure = errors.New("network failure")
	// ErrBackendRejected: the backend answered with a non-success status.
	ErrBackendRejected = errors.New("backend rejected request")
	ErrUnsupportedKind = errors.New("unsupported verification kind")
	// ErrMalformedResponse: success status with a body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrTokenRejected: the backend did not accept the session token.
	ErrTokenRejected = errors.New("token rejected")
)

const (
	genericVerifyMessage  = "Failed to verify content."
	genericHistoryMessage = "Failed to load verification history."
	genericLoginMessage   = "Login failed."
	genericTokenMessage   = "Token verification failed."
)

// BackendError is a non-success HTTP response together with the message the
// backend sent for it.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", ErrBackendRejected, e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() error {
	return ErrBackendRejected
}

// MessageOf returns the text to show the user for err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}

	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in to verify content."
	case errors.Is(err, ErrTokenRejected):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrUnsupportedKind):
		return "Unsupported verification type."
	case errors.Is(err, ErrNetworkFailure):
		return "Could not reach the verification service."
	case errors.Is(err, ErrMalformedResponse):
		return "The verification service returned an unreadable response."
	default:
		return err.Error()
	}
}

// IsUnauthorized reports whether err is a 401 answer from the backend.
func IsUnauthorized(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == 401
}
