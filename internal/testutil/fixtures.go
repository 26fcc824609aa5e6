package testutil

import (
	"time"

	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/domain/token"
	"github.com/google/uuid"
)

func NewTestOrder(kind order.Kind, amountCents int64, currency string) *order.Order {
	now := time.Now()
	return &order.Order{
		ID:            uuid.New(),
		Reference:     "ord-" + uuid.New().String()[:8],
		Kind:          kind,
		CustomerEmail: "buyer@example.com",
		Amount:        order.Amount{ValueCents: amountCents, Currency: currency},
		Description:   "Order for test",
		Status:        order.StatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func NewCompletedOrder(kind order.Kind, amountCents int64, currency string) *order.Order {
	o := NewTestOrder(kind, amountCents, currency)
	o.Status = order.StatusCompleted
	txID := "800001"
	o.TransactionID = &txID
	paidAt := time.Now()
	o.PaidAt = &paidAt
	return o
}

func NewAuthorizedPreorder(amountCents int64, currency string) *order.Order {
	o := NewTestOrder(order.KindPreorder, amountCents, currency)
	o.Status = order.StatusAuthorized
	txID := "800002"
	o.TransactionID = &txID
	return o
}

func NewSubscriptionOrder(amountCents int64, currency string) *order.Order {
	o := NewTestOrder(order.KindSubscription, amountCents, currency)
	customerID := uuid.New()
	o.CustomerID = &customerID
	return o
}

func NewTestToken(customerID uuid.UUID, gatewayID, value string) *token.Token {
	now := time.Now()
	return &token.Token{
		ID:         uuid.New(),
		CustomerID: customerID,
		GatewayID:  gatewayID,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func UUIDPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
