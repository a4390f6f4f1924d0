package checkout

import (
	"context"
	"errors"
	"sync"

	"unlock/internal/domain"
)

// ErrDismissed is returned by a Widget when the user closes the checkout UI
// without paying. Dismissal is a cancellation, not a failure.
var ErrDismissed = errors.New("checkout dismissed by user")

// Widget is a handle to the gateway's hosted checkout UI. Open blocks until
// the user completes payment (returning the confirmation claim) or dismisses
// the UI (returning ErrDismissed).
type Widget interface {
	Open(ctx context.Context, opts WidgetOptions) (*domain.ConfirmationClaim, error)
}

// WidgetOptions scope the hosted checkout to a created order.
type WidgetOptions struct {
	OrderID     string
	AmountMinor int64
	Currency    string
	Prefill     Prefill
	Notes       map[string]string
}

// Prefill carries the user contact fields shown prefilled in checkout.
type Prefill struct {
	Name  string
	Email string
	Phone string
}

// FetchFunc attaches the gateway's checkout script and returns its handle.
type FetchFunc func(ctx context.Context) (Widget, error)

// Loader loads the checkout widget exactly once. Concurrent callers share a
// single in-flight load instead of triggering a duplicate script attach; a
// failed load is not cached, so the next caller retries it.
type Loader struct {
	fetch FetchFunc

	mu       sync.Mutex
	widget   Widget
	loadErr  error
	inflight chan struct{}
}

// NewLoader creates a Loader around the given fetch function.
func NewLoader(fetch FetchFunc) *Loader {
	return &Loader{fetch: fetch}
}

// Load returns the widget handle, fetching it on first use.
func (l *Loader) Load(ctx context.Context) (Widget, error) {
	l.mu.Lock()
	if l.widget != nil {
		w := l.widget
		l.mu.Unlock()
		return w, nil
	}

	if l.inflight == nil {
		// This caller performs the load; everyone else waits on done.
		done := make(chan struct{})
		l.inflight = done
		l.mu.Unlock()

		w, err := l.fetch(ctx)

		l.mu.Lock()
		if err == nil {
			l.widget = w
		}
		l.loadErr = err
		l.inflight = nil
		close(done)
		l.mu.Unlock()

		return w, err
	}

	done := l.inflight
	l.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.widget != nil {
		return l.widget, nil
	}
	return nil, l.loadErr
}
