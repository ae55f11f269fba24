package kv

// KeyVal is a key-value store used as a durable cache.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// SetValue sets a key-value pair.
	SetValue(key, value []byte) error

	// GetValue returns the value for a key, nil when the key is absent.
	GetValue(key []byte) ([]byte, error)
}
