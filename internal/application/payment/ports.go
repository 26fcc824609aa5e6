package payment

import (
	"context"

	"github.com/cassiomorais/hutko-gateway/internal/checkout"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
)

// ProcessorGateway is the slice of the hutko client the use cases drive.
type ProcessorGateway interface {
	Reverse(ctx context.Context, fields hutko.Fields) (hutko.Response, error)
	Capture(ctx context.Context, fields hutko.Fields) (hutko.Response, error)
	Recurring(ctx context.Context, fields hutko.Fields) (hutko.Response, error)
}

// CallbackValidator verifies inbound processor notifications.
type CallbackValidator interface {
	Validate(body hutko.Fields) error
}

// SessionCreator builds the mode-appropriate presentation artifact.
type SessionCreator interface {
	CreateSession(ctx context.Context, fields hutko.Fields) (*checkout.Session, error)
	Mode() checkout.Mode
}

// OrderLocker serializes state transitions per order reference. A callback
// for order X may race a refund for order X; every transition runs under the
// order's lock.
type OrderLocker interface {
	WithOrderLock(ctx context.Context, reference string, fn func(ctx context.Context) error) error
}

// StatusMapping maps declined/expired processor outcomes to the terminal
// status the merchant configured for them.
type StatusMapping struct {
	Declined order.Status
	Expired  order.Status
}

// DefaultStatusMapping keeps each outcome on its natural terminal status.
func DefaultStatusMapping() StatusMapping {
	return StatusMapping{
		Declined: order.StatusDeclined,
		Expired:  order.StatusExpired,
	}
}
