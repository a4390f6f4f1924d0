package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"unlock/internal/domain"
	"unlock/internal/service"
)

// State is the orchestration phase of a checkout attempt.
type State string

const (
	StateIdle          State = "idle"
	StateScriptLoading State = "script-loading"
	StateOrderPending  State = "order-pending"
	StateCheckoutOpen  State = "checkout-open"
	StateTerminal      State = "terminal"
)

var (
	// ErrCheckoutBusy is returned when Open is called while another
	// orchestration is still in flight (a double click).
	ErrCheckoutBusy = errors.New("checkout already in progress")

	// ErrVerificationRejected is returned when the gateway confirmed the
	// checkout but the server rejected the confirmation signature.
	ErrVerificationRejected = errors.New("payment confirmation rejected")
)

// VerifyUnreachableError marks "payment made but the verification call
// failed". Distinct from cancellation: the user must retain the order id
// and retry verification deliberately, never the payment.
type VerifyUnreachableError struct {
	OrderID string
	Err     error
}

func (e *VerifyUnreachableError) Error() string {
	return fmt.Sprintf("payment made but verification call failed; retain order id %s: %v", e.OrderID, e.Err)
}

func (e *VerifyUnreachableError) Unwrap() error {
	return e.Err
}

// OrderCreator creates gateway orders. Satisfied by *service.OrderService.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*domain.Order, error)
}

// ClaimVerifier relays confirmation claims. Satisfied by *service.VerifyService.
type ClaimVerifier interface {
	Verify(ctx context.Context, req service.VerifyRequest) (*service.VerifyResult, error)
}

// OpenRequest contains everything needed to run one checkout attempt.
type OpenRequest struct {
	UserID      string
	TargetID    string
	AmountMinor int64
	Currency    string
	Receipt     string // generated when empty
	Notes       map[string]string
	Prefill     Prefill
}

// Result is the confirmed outcome of a checkout attempt.
type Result struct {
	Order  *domain.Order
	Claim  *domain.ConfirmationClaim
	Verify *service.VerifyResult
}

// Orchestrator drives a single checkout attempt end to end: load the widget
// once, create the order, open hosted checkout, relay the confirmation claim
// to verification. It is non-reentrant; overlapping attempts fail fast.
type Orchestrator struct {
	loader   *Loader
	orders   OrderCreator
	verifier ClaimVerifier
	receipts *service.ReceiptService

	busy atomic.Bool

	mu    sync.Mutex
	state State
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(loader *Loader, orders OrderCreator, verifier ClaimVerifier, receipts *service.ReceiptService) *Orchestrator {
	return &Orchestrator{
		loader:   loader,
		orders:   orders,
		verifier: verifier,
		receipts: receipts,
		state:    StateIdle,
	}
}

// State reports the current orchestration phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Open runs one checkout attempt. Terminal outcomes:
//   - payment completed and verified: a Result with a granted verify status;
//   - payment completed, entitlement write failed: a Result plus the
//     CriticalGrantError (show "contact support", never "try again");
//   - user dismissed the UI: ErrDismissed, verification never called;
//   - order creation or script load failed: the underlying error, checkout
//     never opened;
//   - verification unreachable after payment: VerifyUnreachableError with
//     the order id.
func (o *Orchestrator) Open(ctx context.Context, req OpenRequest) (*Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrCheckoutBusy
	}
	defer func() {
		o.setState(StateTerminal)
		o.busy.Store(false)
	}()

	o.setState(StateScriptLoading)
	widget, err := o.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkout script: %w", err)
	}

	o.setState(StateOrderPending)
	receipt := req.Receipt
	if receipt == "" {
		receipt = o.receipts.Generate(req.TargetID)
	}

	// The notes map correlates the eventual payment back to the exact
	// user/target pair being unlocked.
	notes := make(map[string]string, len(req.Notes)+2)
	for k, v := range req.Notes {
		notes[k] = v
	}
	notes["user_id"] = req.UserID
	notes["target_id"] = req.TargetID

	order, err := o.orders.CreateOrder(ctx, service.CreateOrderRequest{
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Receipt:     receipt,
		Notes:       notes,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create order: %w", err)
	}

	o.setState(StateCheckoutOpen)
	claim, err := widget.Open(ctx, WidgetOptions{
		OrderID:     order.ID,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		Prefill:     req.Prefill,
		Notes:       notes,
	})
	if err != nil {
		if errors.Is(err, ErrDismissed) {
			// Cancellation, not failure. Nothing was charged and nothing
			// is verified or mutated.
			return nil, ErrDismissed
		}
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	verifyResult, err := o.verifier.Verify(ctx, service.VerifyRequest{
		OrderID:   claim.OrderID,
		PaymentID: claim.PaymentID,
		Signature: claim.Signature,
		UserID:    req.UserID,
		TargetID:  req.TargetID,
	})
	if err != nil {
		return nil, &VerifyUnreachableError{OrderID: order.ID, Err: err}
	}

	result := &Result{Order: order, Claim: claim, Verify: verifyResult}

	switch verifyResult.Status {
	case service.VerifyStatusGranted:
		return result, nil
	case service.VerifyStatusGrantFailed:
		return result, verifyResult.Err
	default:
		return nil, ErrVerificationRejected
	}
}
