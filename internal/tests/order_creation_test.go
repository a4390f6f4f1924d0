package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"unlock/internal/gateway"
	"unlock/internal/service"
)

func newOrderService() (*service.OrderService, *MockGatewayClient, *MockLockStore, *MockOrderCache) {
	gw := NewMockGatewayClient()
	locks := NewMockLockStore()
	cache := NewMockOrderCache()
	return service.NewOrderService(gw, locks, cache), gw, locks, cache
}

func TestCreateOrder_Success(t *testing.T) {
	svc, gw, _, cache := newOrderService()

	order, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
		Notes:       map[string]string{"user_id": "u1", "target_id": "g42"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.ID != "order_unlock_guide42_171000" {
		t.Errorf("expected gateway-assigned order id, got %s", order.ID)
	}
	if order.AmountMinor != 15000 || order.Currency != "INR" {
		t.Errorf("expected gateway order returned verbatim, got %+v", order)
	}

	req := gw.LastRequest()
	if req == nil {
		t.Fatal("expected a gateway create request")
	}
	if req.Notes["user_id"] != "u1" || req.Notes["target_id"] != "g42" {
		t.Errorf("expected notes passed through, got %v", req.Notes)
	}

	if !cache.HasOrder(order.ID) {
		t.Error("expected order snapshot to be cached")
	}
}

func TestCreateOrder_ValidationRejectsBeforeGateway(t *testing.T) {
	cases := []struct {
		name    string
		req     service.CreateOrderRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     service.CreateOrderRequest{AmountMinor: 0, Currency: "INR", Receipt: "r1"},
			wantErr: service.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     service.CreateOrderRequest{AmountMinor: -500, Currency: "INR", Receipt: "r1"},
			wantErr: service.ErrInvalidAmount,
		},
		{
			name:    "missing currency",
			req:     service.CreateOrderRequest{AmountMinor: 15000, Receipt: "r1"},
			wantErr: service.ErrInvalidCurrency,
		},
		{
			name:    "missing receipt",
			req:     service.CreateOrderRequest{AmountMinor: 15000, Currency: "INR"},
			wantErr: service.ErrInvalidReceipt,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, gw, _, _ := newOrderService()

			_, err := svc.CreateOrder(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if atomic.LoadInt32(&gw.CreateCallCount) != 0 {
				t.Error("expected gateway not to be called for invalid input")
			}
		})
	}
}

func TestCreateOrder_GatewayFailureNotRetried(t *testing.T) {
	svc, gw, locks, cache := newOrderService()
	gw.CreateError = &gateway.Error{StatusCode: 502, Message: "gateway unavailable"}

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
	})

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected gateway error surfaced as-is, got %v", err)
	}
	if gwErr.StatusCode != 502 {
		t.Errorf("expected status 502, got %d", gwErr.StatusCode)
	}

	if got := atomic.LoadInt32(&gw.CreateCallCount); got != 1 {
		t.Errorf("expected exactly 1 gateway call (no retry), got %d", got)
	}
	if locks.IsLocked("unlock_guide42_171000") {
		t.Error("expected receipt lock released after gateway failure")
	}
	if cache.HasOrder("order_unlock_guide42_171000") {
		t.Error("expected no snapshot cached after failure")
	}
}

func TestCreateOrder_DuplicateReceiptRejected(t *testing.T) {
	svc, gw, _, _ := newOrderService()

	if _, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
	}); err != nil {
		t.Fatalf("unexpected error on first create: %v", err)
	}

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
	})
	if !errors.Is(err, service.ErrReceiptInFlight) {
		t.Errorf("expected ErrReceiptInFlight, got %v", err)
	}
	if got := atomic.LoadInt32(&gw.CreateCallCount); got != 1 {
		t.Errorf("expected only the first create to reach the gateway, got %d calls", got)
	}
}

func TestCreateOrder_LockStoreOutageDegradesOpen(t *testing.T) {
	svc, gw, locks, _ := newOrderService()
	locks.AcquireError = errors.New("redis connection refused")

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
	})
	if err != nil {
		t.Fatalf("expected creation to proceed despite lock outage, got %v", err)
	}
	if atomic.LoadInt32(&gw.CreateCallCount) != 1 {
		t.Error("expected gateway called once")
	}
}

func TestGetOrder_ReturnsCachedSnapshot(t *testing.T) {
	svc, _, _, _ := newOrderService()

	order, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		AmountMinor: 15000,
		Currency:    "INR",
		Receipt:     "unlock_guide42_171000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != order.ID || got.AmountMinor != order.AmountMinor {
		t.Errorf("expected cached snapshot, got %+v", got)
	}
}

func TestGetOrder_MissReturnsNotFound(t *testing.T) {
	svc, _, _, _ := newOrderService()

	_, err := svc.GetOrder(context.Background(), "order_unknown")
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}
