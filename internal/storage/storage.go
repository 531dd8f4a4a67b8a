// Package storage provides the durable key/value stores behind the session.
package storage

import "context"

// Store is a string key/value store. Get reports whether the key was present.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
