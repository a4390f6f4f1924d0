package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"unlock/internal/checkout"
	"unlock/internal/domain"
	"unlock/internal/gateway"
	"unlock/internal/repository"
	"unlock/internal/service"
)

// ──────────────────────────────────────────────
// MOCK GATEWAY CLIENT
// ──────────────────────────────────────────────

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mu       sync.Mutex
	requests []gateway.CreateOrderRequest

	// Fixed order to return; when nil one is synthesized from the request.
	NextOrder *domain.Order

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockGatewayClient creates a new mock gateway client.
func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{}
}

func (m *MockGatewayClient) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*domain.Order, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	if m.NextOrder != nil {
		order := *m.NextOrder
		return &order, nil
	}
	return &domain.Order{
		ID:          "order_" + req.Receipt,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Status:      domain.OrderStatusCreated,
		Notes:       req.Notes,
	}, nil
}

// LastRequest returns the most recent create request (for test assertions).
func (m *MockGatewayClient) LastRequest() *gateway.CreateOrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// ──────────────────────────────────────────────
// MOCK ENTITLEMENT STORE
// ──────────────────────────────────────────────

// MockEntitlementStore is a mock implementation of EntitlementStore.
type MockEntitlementStore struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}

	// Counters
	GrantCallCount int32

	// Error injection
	GrantError error
}

// NewMockEntitlementStore creates a new mock entitlement store.
func NewMockEntitlementStore() *MockEntitlementStore {
	return &MockEntitlementStore{
		sets: make(map[string]map[string]struct{}),
	}
}

func (m *MockEntitlementStore) Grant(ctx context.Context, userID, targetID string) error {
	atomic.AddInt32(&m.GrantCallCount, 1)
	if m.GrantError != nil {
		return m.GrantError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[userID] == nil {
		m.sets[userID] = make(map[string]struct{})
	}
	m.sets[userID][targetID] = struct{}{}
	return nil
}

func (m *MockEntitlementStore) Has(ctx context.Context, userID, targetID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[userID][targetID]
	return ok, nil
}

func (m *MockEntitlementStore) List(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	targets := make([]string, 0, len(m.sets[userID]))
	for target := range m.sets[userID] {
		targets = append(targets, target)
	}
	return targets, nil
}

// CountTargets returns the entitlement set size for a user (for assertions).
func (m *MockEntitlementStore) CountTargets(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sets[userID])
}

// HasTarget checks membership without error plumbing (for assertions).
func (m *MockEntitlementStore) HasTarget(userID, targetID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sets[userID][targetID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK PAYMENT RECORD REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRecordRepository is a mock implementation of PaymentRecordRepository.
type MockPaymentRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.PaymentRecord // keyed by orderID|paymentID

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockPaymentRecordRepository creates a new mock payment record repository.
func NewMockPaymentRecordRepository() *MockPaymentRecordRepository {
	return &MockPaymentRecordRepository{
		records: make(map[string]*domain.PaymentRecord),
	}
}

func recordKey(orderID, paymentID string) string {
	return fmt.Sprintf("%s|%s", orderID, paymentID)
}

func (m *MockPaymentRecordRepository) Create(ctx context.Context, record *domain.PaymentRecord) (bool, error) {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return false, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey(record.OrderID, record.PaymentID)
	if _, exists := m.records[key]; exists {
		return false, nil // Duplicate pair, not an error.
	}
	copy := *record
	m.records[key] = &copy
	return true, nil
}

func (m *MockPaymentRecordRepository) GetByOrderAndPayment(ctx context.Context, orderID, paymentID string) (*domain.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[recordKey(orderID, paymentID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *record
	return &copy, nil
}

func (m *MockPaymentRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.PaymentRecord
	for _, r := range m.records {
		if r.UserID == userID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountRecords returns the number of stored records.
func (m *MockPaymentRecordRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ──────────────────────────────────────────────
// MOCK RECONCILIATION REPOSITORY
// ──────────────────────────────────────────────

// MockReconciliationRepository is a mock implementation of ReconciliationRepository.
type MockReconciliationRepository struct {
	mu    sync.RWMutex
	cases []*domain.ReconciliationCase

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockReconciliationRepository creates a new mock reconciliation repository.
func NewMockReconciliationRepository() *MockReconciliationRepository {
	return &MockReconciliationRepository{}
}

func (m *MockReconciliationRepository) Create(ctx context.Context, c *domain.ReconciliationCase) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *c
	m.cases = append(m.cases, &copy)
	return nil
}

func (m *MockReconciliationRepository) ListOpen(ctx context.Context) ([]*domain.ReconciliationCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ReconciliationCase, 0, len(m.cases))
	for _, c := range m.cases {
		copy := *c
		result = append(result, &copy)
	}
	return result, nil
}

// CountCases returns the number of reconciliation cases.
func (m *MockReconciliationRepository) CountCases() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cases)
}

// LastCase returns the most recent case (for assertions).
func (m *MockReconciliationRepository) LastCase() *domain.ReconciliationCase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.cases) == 0 {
		return nil
	}
	return m.cases[len(m.cases)-1]
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireReceiptLock(ctx context.Context, receipt string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if expiry, exists := m.locks[receipt]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[receipt] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseReceiptLock(ctx context.Context, receipt string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, receipt)
	return nil
}

// IsLocked checks if a receipt is locked (for test assertions).
func (m *MockLockStore) IsLocked(receipt string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[receipt]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK ORDER CACHE
// ──────────────────────────────────────────────

// MockOrderCache is a mock implementation of OrderCache.
type MockOrderCache struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters
	SetCallCount int32

	// Error injection
	SetError error
	GetError error
}

// NewMockOrderCache creates a new mock order cache.
func NewMockOrderCache() *MockOrderCache {
	return &MockOrderCache{
		orders: make(map[string]*domain.Order),
	}
}

func (m *MockOrderCache) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil // Cache miss
	}
	copy := *order
	return &copy, nil
}

func (m *MockOrderCache) Set(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *order
	m.orders[order.ID] = &copy
	return nil
}

func (m *MockOrderCache) Invalidate(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, orderID)
	return nil
}

// HasOrder checks whether a snapshot exists (for assertions).
func (m *MockOrderCache) HasOrder(orderID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.orders[orderID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK CHECKOUT WIDGET
// ──────────────────────────────────────────────

// MockWidget is a mock implementation of checkout.Widget.
type MockWidget struct {
	mu      sync.Mutex
	options []checkout.WidgetOptions

	// Control behavior
	Dismiss   bool
	OpenError error
	Claim     *domain.ConfirmationClaim
	// ClaimFunc, when set, builds the claim from the opened options (so
	// tests can compute a real signature for the assigned order id).
	ClaimFunc func(opts checkout.WidgetOptions) *domain.ConfirmationClaim
	// BlockCh, when set, makes Open wait until the channel is closed.
	BlockCh chan struct{}

	// Counters
	OpenCallCount int32
}

// NewMockWidget creates a new mock checkout widget.
func NewMockWidget() *MockWidget {
	return &MockWidget{}
}

func (m *MockWidget) Open(ctx context.Context, opts checkout.WidgetOptions) (*domain.ConfirmationClaim, error) {
	atomic.AddInt32(&m.OpenCallCount, 1)
	m.mu.Lock()
	m.options = append(m.options, opts)
	block := m.BlockCh
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenError != nil {
		return nil, m.OpenError
	}
	if m.Dismiss {
		return nil, checkout.ErrDismissed
	}
	if m.ClaimFunc != nil {
		return m.ClaimFunc(opts), nil
	}
	if m.Claim != nil {
		claim := *m.Claim
		return &claim, nil
	}
	return &domain.ConfirmationClaim{OrderID: opts.OrderID, PaymentID: "pay_mock"}, nil
}

// LastOptions returns the most recent open options (for assertions).
func (m *MockWidget) LastOptions() *checkout.WidgetOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.options) == 0 {
		return nil
	}
	opts := m.options[len(m.options)-1]
	return &opts
}

// ──────────────────────────────────────────────
// MOCK CLAIM VERIFIER
// ──────────────────────────────────────────────

// MockClaimVerifier wraps a real verifier so tests can count calls and
// simulate an unreachable verification service.
type MockClaimVerifier struct {
	Inner checkout.ClaimVerifier

	// Counters
	VerifyCallCount int32

	// Error injection (simulates transport failure)
	VerifyError error
}

// NewMockClaimVerifier creates a new mock claim verifier.
func NewMockClaimVerifier(inner checkout.ClaimVerifier) *MockClaimVerifier {
	return &MockClaimVerifier{Inner: inner}
}

func (m *MockClaimVerifier) Verify(ctx context.Context, req service.VerifyRequest) (*service.VerifyResult, error) {
	atomic.AddInt32(&m.VerifyCallCount, 1)
	if m.VerifyError != nil {
		return nil, m.VerifyError
	}
	return m.Inner.Verify(ctx, req)
}
