package token

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for recurring token persistence
type Repository interface {
	// Save inserts the token, or updates it in place when a record with the
	// same (customer, gateway, value) already exists
	Save(ctx context.Context, token *Token) error

	// GetByValue retrieves a customer's token by its value
	GetByValue(ctx context.Context, customerID uuid.UUID, value string) (*Token, error)

	// GetLatest retrieves the most recently saved token for a customer and gateway
	GetLatest(ctx context.Context, customerID uuid.UUID, gatewayID string) (*Token, error)

	// ListByCustomer lists all tokens stored for a customer
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Token, error)
}
