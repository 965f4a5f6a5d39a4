// Package common contains shared constants and small helpers used across
// VerifyNow client components.
package common

// Keys of the durable key-value store holding the session credential.
// Absence of either key is equivalent to "logged out".
const (
	TokenStorageKey = "app_token"
	UserStorageKey  = "currentUser"
)

// RequestIDHeaderName is attached to every outbound backend request so a
// submission can be correlated with backend logs.
const RequestIDHeaderName = "X-Request-ID"

// DefaultBackendURL is used when neither config nor environment names a backend.
const DefaultBackendURL = "http://localhost:5000"
