package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// KVStore keeps JSON-encoded values in process memory, partitioned by client namespace.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Bucket returns the view of the store owned by one client.
func (s *KVStore) Bucket(namespace string) *Bucket {
	return &Bucket{store: s, namespace: namespace}
}

// Bucket implements app.Store for a single namespace.
type Bucket struct {
	store     *KVStore
	namespace string
}

func (b *Bucket) key(key string) string {
	return b.namespace + ":" + key
}

func (b *Bucket) Get(_ context.Context, key string, dst any) (bool, error) {
	b.store.mu.RLock()
	raw, ok := b.store.data[b.key(key)]
	b.store.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *Bucket) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.store.mu.Lock()
	b.store.data[b.key(key)] = raw
	b.store.mu.Unlock()
	return nil
}

func (b *Bucket) Remove(_ context.Context, key string) error {
	b.store.mu.Lock()
	delete(b.store.data, b.key(key))
	b.store.mu.Unlock()
	return nil
}
