// Package client contains the client-side building blocks that talk to the
// outside world: the VerifyNow backend and the local SQLite store.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     backend: token re-validation, Google login exchange, text/link/image
//     verification and verification history.
//  2. A concrete HTTP implementation (see HTTPClient) built on resty. Every
//     request carries an X-Request-ID header; verification calls carry the
//     session token as a bearer credential.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are classified with sentinel errors matched by errors.Is:
// ErrUnauthenticated, ErrNetworkFailure, ErrBackendRejected,
// ErrUnsupportedKind, ErrMalformedResponse and ErrTokenRejected. A non-success
// status is returned as *BackendError carrying the backend's message;
// MessageOf turns any of these into user-facing text.
package client
