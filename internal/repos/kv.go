package repos

import "context"

// KV is a durable string key-value store.
type KV interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

type scopedKV struct {
	kv     KV
	prefix string
}

// Scoped returns a view of kv where every key is prefixed with namespace.
func Scoped(kv KV, namespace string) KV {
	return &scopedKV{kv: kv, prefix: namespace + ":"}
}

func (s *scopedKV) Get(ctx context.Context, key string) (string, bool, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scopedKV) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scopedKV) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.prefix+key)
}
