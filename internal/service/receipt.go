package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReceiptService generates caller-unique receipt strings for checkout
// attempts. Orders are never reused across attempts, so every attempt gets
// a fresh receipt.
type ReceiptService struct{}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// Generate builds a receipt of the form unlock_<target>_<unix>_<suffix>.
// The uuid suffix keeps receipts unique when the same user retries a
// checkout within the same second.
func (s *ReceiptService) Generate(targetID string) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("unlock_%s_%d_%s", targetID, time.Now().Unix(), suffix)
}
