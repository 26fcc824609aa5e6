package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for order persistence
type Repository interface {
	// Create creates a new order
	Create(ctx context.Context, order *Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByReference retrieves an order by its processor-facing reference
	GetByReference(ctx context.Context, reference string) (*Order, error)

	// Update persists order changes with an optimistic version check
	Update(ctx context.Context, order *Order) error

	// List lists orders with filters
	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	// ListDueRenewals lists subscription orders still pending at the cutoff
	ListDueRenewals(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)

	// AddNote appends an audit-trail note
	AddNote(ctx context.Context, note *Note) error

	// GetNotes retrieves the audit trail for an order
	GetNotes(ctx context.Context, orderID uuid.UUID) ([]*Note, error)
}

// ListFilter defines filters for listing orders
type ListFilter struct {
	Status     *Status
	Kind       *Kind
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}
