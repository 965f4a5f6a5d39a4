// Package metadata is the durable key-value store of the client: a single
// SQLite table standing in for the browser's localStorage.
package metadata

import (
	"context"
)

// Repository reads and writes raw values by key.
//
// Get returns (nil, nil) for an absent key; absence is a normal state
// (e.g. "logged out"), not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
