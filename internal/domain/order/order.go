package order

import (
	"fmt"
	"time"

	"github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the order payment status in the state machine
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCaptured   Status = "captured"
	StatusCompleted  Status = "completed"
	StatusDeclined   Status = "declined"
	StatusExpired    Status = "expired"
	StatusRefunding  Status = "refunding"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

// Kind marks how the order settles: a plain purchase, a preauthorized
// pre-order captured on release, or a subscription order that stores a
// recurring token.
type Kind string

const (
	KindPurchase     Kind = "purchase"
	KindPreorder     Kind = "preorder"
	KindSubscription Kind = "subscription"
)

// Order represents a storefront order driven through the payment lifecycle.
// Reference is the identifier sent to the processor; it differs from ID so an
// order can be re-submitted for payment with a fresh processor-side identity.
type Order struct {
	ID            uuid.UUID
	Reference     string
	Kind          Kind
	CustomerID    *uuid.UUID
	CustomerEmail string
	Amount        Amount
	Description   string
	Status        Status
	TransactionID *string
	LastError     *string
	Notes         []Note
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PaidAt        *time.Time
}

// Note is a single entry in the order's audit trail.
type Note struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Amount represents a monetary amount in the smallest currency unit (e.g. cents).
type Amount struct {
	ValueCents int64
	Currency   string
}

// String returns a human-readable representation of the amount.
func (a Amount) String() string {
	whole := a.ValueCents / 100
	frac := a.ValueCents % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, a.Currency)
}

// Validate checks that the amount is valid. Zero amounts are allowed: free
// trials and $0 renewals settle without contacting the processor.
func (a Amount) Validate() error {
	return validateAmount(a)
}

// New creates a new order in pending state.
func New(reference string, kind Kind, customerID *uuid.UUID, email string, amount Amount, description string) (*Order, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, errors.ErrInvalidInput
	}

	now := time.Now()
	return &Order{
		ID:            uuid.New(),
		Reference:     reference,
		Kind:          kind,
		CustomerID:    customerID,
		CustomerEmail: email,
		Amount:        amount,
		Description:   description,
		Status:        StatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CanTransitionTo checks if the order can transition to the given status.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {
			StatusAuthorized,
			StatusCompleted,
			StatusDeclined,
			StatusExpired,
			StatusFailed,
		},
		StatusAuthorized: {
			StatusCaptured,
			StatusCompleted,
			StatusFailed,
		},
		StatusCaptured: {
			StatusCompleted,
			StatusRefunding,
			StatusRefunded,
		},
		StatusCompleted: {
			StatusRefunding,
			StatusRefunded,
		},
		StatusRefunding: {
			StatusRefunded,
		},
		StatusDeclined: {},
		StatusExpired:  {},
		StatusRefunded: {},
		StatusFailed:   {},
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the order to a new status.
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(o.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()

	if newStatus == StatusCompleted || newStatus == StatusCaptured {
		now := time.Now()
		o.PaidAt = &now
	}
	return nil
}

// AddNote appends an entry to the order's audit trail.
func (o *Order) AddNote(text string) {
	o.Notes = append(o.Notes, Note{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

// MarkPaid transitions the order to completed status and records the
// processor transaction id.
func (o *Order) MarkPaid(transactionID string) error {
	if err := o.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	if transactionID != "" {
		o.TransactionID = &transactionID
	}
	return nil
}

// MarkAuthorized transitions a preauthorized order to authorized status.
func (o *Order) MarkAuthorized(transactionID string) error {
	if err := o.TransitionTo(StatusAuthorized); err != nil {
		return err
	}
	if transactionID != "" {
		o.TransactionID = &transactionID
	}
	return nil
}

// MarkFailed transitions the order to the given terminal status with a reason.
// The reason lands both in LastError and the audit trail so no failure path
// leaves the order without a human-readable explanation.
func (o *Order) MarkFailed(status Status, reason string) error {
	if status != StatusFailed && status != StatusDeclined && status != StatusExpired {
		status = StatusFailed
	}
	if err := o.TransitionTo(status); err != nil {
		return err
	}
	o.LastError = &reason
	o.AddNote(reason)
	return nil
}

// MarkRefunding transitions the order to refunding status.
func (o *Order) MarkRefunding() error {
	return o.TransitionTo(StatusRefunding)
}

// MarkRefunded transitions the order to refunded status.
func (o *Order) MarkRefunded() error {
	return o.TransitionTo(StatusRefunded)
}

// IsTerminal checks if the order is in a terminal payment state.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusCompleted, StatusDeclined, StatusExpired, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

// Refundable reports whether a refund may be requested in the current state.
func (o *Order) Refundable() bool {
	return o.Status == StatusCompleted || o.Status == StatusCaptured || o.Status == StatusRefunding
}

func validateAmount(amount Amount) error {
	if amount.ValueCents < 0 {
		return errors.NewValidationError("amount", "must not be negative")
	}
	if amount.Currency == "" {
		return errors.NewValidationError("currency", "cannot be empty")
	}
	if len(amount.Currency) != 3 {
		return errors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	return nil
}
