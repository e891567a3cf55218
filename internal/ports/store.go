package ports

import "context"

// KeyValueStore is the durable store backing the exit ledger.
type KeyValueStore interface {
	// ReadKey returns the stored value. found is false when the key has never been written.
	ReadKey(ctx context.Context, name string) (value string, found bool, err error)
	// WriteKey stores value under name, replacing any previous value. The write is durable
	// once WriteKey returns nil.
	WriteKey(ctx context.Context, name, value string) error
}
