package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"unlock/internal/domain"
	"unlock/internal/service"
)

// OrderHandler handles HTTP requests for payment orders.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// OrderResponse echoes the gateway's order object.
type OrderResponse struct {
	ID       string             `json:"id"`
	Amount   int64              `json:"amount"`
	Currency string             `json:"currency"`
	Receipt  string             `json:"receipt"`
	Status   domain.OrderStatus `json:"status"`
	Notes    map[string]string  `json:"notes,omitempty"`
}

// CreateOrder handles POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		AmountMinor: req.Amount,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, orderResponse(order))
}

// GetOrder handles GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, orderResponse(order))
}

func orderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:       order.ID,
		Amount:   order.AmountMinor,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
		Notes:    order.Notes,
	}
}
