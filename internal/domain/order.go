package domain

// OrderStatus represents the gateway-side status of an order.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusAuthorized OrderStatus = "authorized"
	OrderStatusCaptured   OrderStatus = "captured"
	OrderStatusFailed     OrderStatus = "failed"
)

// Order is a gateway-tracked intent to collect a specific amount.
// The gateway assigns the id and owns all status transitions; the
// service returns the object verbatim and never mutates it.
type Order struct {
	ID          string            `json:"id"`
	AmountMinor int64             `json:"amount"` // smallest currency unit (paise, cents)
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Status      OrderStatus       `json:"status"`
	Notes       map[string]string `json:"notes,omitempty"`
}
