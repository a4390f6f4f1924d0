package redis

import (
	"context"
	"time"

	"unlock/internal/domain"
)

// EntitlementStoreInterface defines the interface for entitlement set operations.
type EntitlementStoreInterface interface {
	Grant(ctx context.Context, userID, targetID string) error
	Has(ctx context.Context, userID, targetID string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireReceiptLock(ctx context.Context, receipt string, ttl time.Duration) (bool, error)
	ReleaseReceiptLock(ctx context.Context, receipt string) error
}

// OrderCacheInterface defines the interface for order snapshot caching.
type OrderCacheInterface interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Set(ctx context.Context, order *domain.Order) error
	Invalidate(ctx context.Context, orderID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ EntitlementStoreInterface = (*EntitlementStore)(nil)
	_ LockStoreInterface        = (*LockStore)(nil)
	_ OrderCacheInterface       = (*OrderCache)(nil)
)
