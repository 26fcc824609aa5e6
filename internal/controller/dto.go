package controller

import (
	"math"
	"time"

	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/google/uuid"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, string for IDs,
// validation tags). Controllers convert these to domain values before calling
// business logic.

// CreateOrderRequest holds the input for creating an order.
type CreateOrderRequest struct {
	Reference     string  `json:"reference,omitempty"`
	Kind          string  `json:"kind" validate:"required,oneof=purchase preorder subscription"`
	CustomerID    *string `json:"customer_id,omitempty"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Description   string  `json:"description" validate:"required"`
}

// RefundRequest holds the input for refunding an order. A zero or omitted
// amount requests a full refund.
type RefundRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Reason string  `json:"reason"`
}

// --- Response DTOs ---

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            string     `json:"id"`
	Reference     string     `json:"reference"`
	Kind          string     `json:"kind"`
	CustomerID    *string    `json:"customer_id,omitempty"`
	CustomerEmail string     `json:"customer_email"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	LastError     *string    `json:"last_error,omitempty"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// NoteResponse represents one audit-trail entry.
type NoteResponse struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromOrder converts a domain order to API response.
func FromOrder(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID.String(),
		Reference:     o.Reference,
		Kind:          string(o.Kind),
		CustomerEmail: o.CustomerEmail,
		Amount:        centsToFloat(o.Amount.ValueCents),
		Currency:      o.Amount.Currency,
		Description:   o.Description,
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
		LastError:     o.LastError,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		PaidAt:        o.PaidAt,
	}
	if o.CustomerID != nil {
		cid := o.CustomerID.String()
		resp.CustomerID = &cid
	}
	return resp
}

// FromNote converts a domain note to API response.
func FromNote(n *order.Note) *NoteResponse {
	return &NoteResponse{
		ID:        n.ID.String(),
		Note:      n.Text,
		CreatedAt: n.CreatedAt,
	}
}

// floatToCents converts a major-unit amount to minor units. Rounding guards
// against float artifacts like 10.55 * 100 = 1054.999....
func floatToCents(f float64) int64 {
	return int64(math.Round(f * 100))
}

// centsToFloat converts minor units to a major-unit amount.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}

// parseUUID parses a UUID string, returning nil if invalid.
func parseUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
