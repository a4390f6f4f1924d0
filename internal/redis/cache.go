package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"unlock/internal/domain"
)

// OrderCache keeps short-lived snapshots of gateway orders so the client can
// re-read the gateway-accurate total while checkout is open. The gateway owns
// order state; expired snapshots simply fall out of the cache (abandoned
// orders are never persisted).
type OrderCache struct {
	client *redis.Client
}

// NewOrderCache creates a new OrderCache.
func NewOrderCache(client *redis.Client) *OrderCache {
	return &OrderCache{client: client}
}

// OrderCacheTTL bounds how long a created-order snapshot stays readable.
// Checkout attempts are far shorter than this.
const OrderCacheTTL = 15 * time.Minute

const orderCachePrefix = "cache:order:"

// Get retrieves an order snapshot. Returns nil on cache miss.
func (c *OrderCache) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	data, err := c.client.Get(ctx, orderCachePrefix+orderID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Set stores an order snapshot.
func (c *OrderCache) Set(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderCachePrefix+order.ID, data, OrderCacheTTL).Err()
}

// Invalidate removes an order snapshot.
func (c *OrderCache) Invalidate(ctx context.Context, orderID string) error {
	return c.client.Del(ctx, orderCachePrefix+orderID).Err()
}
