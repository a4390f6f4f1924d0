package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"unlock/internal/domain"
)

// Error is a structured rejection from the gateway. StatusCode carries the
// gateway's own HTTP status so callers can pass it through.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("gateway: request failed with status %d", e.StatusCode)
}

// CreateOrderRequest contains the fields sent verbatim to the gateway's
// order-creation API.
type CreateOrderRequest struct {
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// Client exposes the gateway operations the service depends on.
type Client interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)
}

// HTTPClient implements Client against the gateway's HTTP API using
// key id / key secret basic auth.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// errorBody mirrors the gateway's structured error payload.
type errorBody struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// NewHTTPClient creates a gateway client with a default timeout.
func NewHTTPClient(baseURL, keyID, keySecret string) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreateOrder issues the create-order call. The gateway is the source of
// truth for the order id; the returned object is decoded verbatim.
func (c *HTTPClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/orders")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var order domain.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, err
		}
		return &order, nil
	default:
		data, _ := io.ReadAll(resp.Body)
		var parsed errorBody
		_ = json.Unmarshal(data, &parsed)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    parsed.Error.Description,
		}
	}
}
