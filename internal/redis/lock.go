package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireReceiptLock attempts to acquire the in-flight lock for a receipt.
// It guards order creation against a concurrent duplicate with the same
// receipt (a double-submitted checkout). Returns true if the lock was
// acquired, false if already held.
func (s *LockStore) AcquireReceiptLock(ctx context.Context, receipt string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:receipt:%s", receipt)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseReceiptLock releases the lock for the given receipt.
func (s *LockStore) ReleaseReceiptLock(ctx context.Context, receipt string) error {
	key := fmt.Sprintf("lock:receipt:%s", receipt)

	return s.client.Del(ctx, key).Err()
}
