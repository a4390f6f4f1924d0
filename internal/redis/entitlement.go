package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// EntitlementStore holds the per-user sets of unlocked target IDs.
// SADD is commutative and idempotent, so concurrent duplicate grants
// converge on a single membership without any locking.
type EntitlementStore struct {
	client *redis.Client
}

// NewEntitlementStore creates a new EntitlementStore.
func NewEntitlementStore(client *redis.Client) *EntitlementStore {
	return &EntitlementStore{client: client}
}

const entitlementPrefix = "entitlements:"

// Grant adds a target to the user's entitlement set. Adding an
// already-present target is a no-op, not an error.
func (s *EntitlementStore) Grant(ctx context.Context, userID, targetID string) error {
	return s.client.SAdd(ctx, entitlementPrefix+userID, targetID).Err()
}

// Has checks whether the user has unlocked the target.
func (s *EntitlementStore) Has(ctx context.Context, userID, targetID string) (bool, error) {
	return s.client.SIsMember(ctx, entitlementPrefix+userID, targetID).Result()
}

// List returns all target IDs the user has unlocked.
func (s *EntitlementStore) List(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, entitlementPrefix+userID).Result()
}
