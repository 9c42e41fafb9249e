package port

import "context"

// Storage is a durable key-value slot owned by one cart. Write replaces the
// previous value for the key.
type Storage interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
}
