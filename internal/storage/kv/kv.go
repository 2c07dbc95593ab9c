// Package kv provides the durable key-value slots backing cart persistence,
// with in-memory, file, and Redis implementations.
package kv

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value blob store. One key holds one record;
// concurrent writers to the same key are last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
