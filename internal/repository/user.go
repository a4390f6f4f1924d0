package repository

import (
	"context"

	"unlock/internal/domain"
)

// UserRepository defines the read operations needed for checkout prefill.
type UserRepository interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
