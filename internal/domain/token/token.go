package token

import (
	"time"

	"github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/google/uuid"
)

// Token is a processor-issued recurring handle (rectoken) stored against a
// customer. Multiple distinct tokens may coexist for one customer; only a
// token with the same value is ever updated in place.
type Token struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	GatewayID  string
	Value      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New creates a new recurring token record.
func New(customerID uuid.UUID, gatewayID, value string) (*Token, error) {
	if value == "" || gatewayID == "" {
		return nil, errors.ErrInvalidInput
	}
	now := time.Now()
	return &Token{
		ID:         uuid.New(),
		CustomerID: customerID,
		GatewayID:  gatewayID,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// BelongsTo reports whether the token was issued for the given gateway.
func (t *Token) BelongsTo(gatewayID string) bool {
	return t.GatewayID == gatewayID
}

// Touch refreshes the update timestamp when a callback re-delivers the same
// token value.
func (t *Token) Touch() {
	t.UpdatedAt = time.Now()
}
