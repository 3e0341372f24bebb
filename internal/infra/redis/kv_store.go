package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore persists client state in Redis as JSON strings.
// Keys are laid out as: quiz:client:{clientID}:{key}
// Every write refreshes the TTL of the written key only; there is no
// transaction across keys.
type KVStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{client: client, ttl: ttl}
}

// Bucket returns the app.Store view for one client.
func (s *KVStore) Bucket(clientID string) *Bucket {
	return &Bucket{store: s, prefix: "quiz:client:" + clientID + ":"}
}

// Bucket implements app.Store for a single client.
type Bucket struct {
	store  *KVStore
	prefix string
}

func (b *Bucket) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := b.store.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *Bucket) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.client.Set(ctx, b.prefix+key, raw, b.store.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) Remove(ctx context.Context, key string) error {
	if err := b.store.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
