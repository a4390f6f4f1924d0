package service

import (
	"context"
	"log"
	"time"

	"unlock/internal/domain"
	"unlock/internal/gateway"
	"unlock/internal/redis"
)

// receiptLockTTL absorbs double-submitted creates for the same receipt.
const receiptLockTTL = 2 * time.Minute

// OrderService creates payment orders with the gateway.
type OrderService struct {
	gateway gateway.Client
	locks   redis.LockStoreInterface
	cache   redis.OrderCacheInterface
}

// NewOrderService creates a new OrderService.
func NewOrderService(gw gateway.Client, locks redis.LockStoreInterface, cache redis.OrderCacheInterface) *OrderService {
	return &OrderService{
		gateway: gw,
		locks:   locks,
		cache:   cache,
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// CreateOrder validates the parameters and creates an order with the
// gateway. On success the gateway's order object is returned verbatim so
// the client can present the gateway-accurate total. A gateway failure is
// surfaced as-is and never retried here: a blind retry could create a
// duplicate order for the same receipt.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Currency == "" {
		return nil, ErrInvalidCurrency
	}
	if req.Receipt == "" {
		return nil, ErrInvalidReceipt
	}

	// Reject a concurrent duplicate create for the same receipt. A lock
	// store outage degrades to unguarded creation rather than blocking
	// checkout.
	acquired, err := s.locks.AcquireReceiptLock(ctx, req.Receipt, receiptLockTTL)
	if err != nil {
		log.Printf("receipt lock unavailable for %s: %v", req.Receipt, err)
		acquired = true
	} else if !acquired {
		return nil, ErrReceiptInFlight
	}

	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Notes:       req.Notes,
	})
	if err != nil {
		// Free the receipt so a deliberate retry stays possible.
		_ = s.locks.ReleaseReceiptLock(ctx, req.Receipt)
		return nil, err
	}

	if err := s.cache.Set(ctx, order); err != nil {
		log.Printf("order snapshot cache failed for %s: %v", order.ID, err)
	}

	return order, nil
}

// GetOrder retrieves a created-order snapshot by id.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.cache.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	return order, nil
}
