package storage

import (
	"context"
	"errors"
)

// Store is a string key-value store used for client-side state that
// survives restarts, such as the promotional countdown.
type Store interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
