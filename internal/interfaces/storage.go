package interfaces

import "context"

// KeyValueStore is the minimal persistence abstraction the engine needs.
// Values are JSON-serialized strings. A missing key returns an error from Get;
// callers treat missing or corrupt values as "empty", never as fatal.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
