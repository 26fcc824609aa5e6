package payment

import (
	"context"

	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
)

// CheckoutParamsHook transforms outbound checkout parameters for an order
// before signing.
type CheckoutParamsHook func(ctx context.Context, o *order.Order, fields hutko.Fields)

// CallbackAcceptedHook reacts to a validated callback after the order state
// transition has been persisted.
type CallbackAcceptedHook func(ctx context.Context, o *order.Order, body hutko.Fields) error

// RenewalHook observes a scheduled renewal before it is charged.
type RenewalHook func(ctx context.Context, o *order.Order)

// Hooks is the extension-point registry for pre-order and subscription
// behavior. Registration happens at startup, before any traffic; the
// registry is read-only afterwards.
type Hooks struct {
	beforeCheckoutParams []CheckoutParamsHook
	callbackAccepted     []CallbackAcceptedHook
	scheduledRenewal     []RenewalHook
}

func NewHooks() *Hooks {
	return &Hooks{}
}

// OnBeforeCheckoutParams registers a checkout parameter transformer.
func (h *Hooks) OnBeforeCheckoutParams(fn CheckoutParamsHook) {
	h.beforeCheckoutParams = append(h.beforeCheckoutParams, fn)
}

// OnCallbackAccepted registers a validated-callback reaction.
func (h *Hooks) OnCallbackAccepted(fn CallbackAcceptedHook) {
	h.callbackAccepted = append(h.callbackAccepted, fn)
}

// OnScheduledRenewal registers a renewal observer.
func (h *Hooks) OnScheduledRenewal(fn RenewalHook) {
	h.scheduledRenewal = append(h.scheduledRenewal, fn)
}

func (h *Hooks) applyBeforeCheckoutParams(ctx context.Context, o *order.Order, fields hutko.Fields) {
	for _, fn := range h.beforeCheckoutParams {
		fn(ctx, o, fields)
	}
}

func (h *Hooks) applyCallbackAccepted(ctx context.Context, o *order.Order, body hutko.Fields) error {
	for _, fn := range h.callbackAccepted {
		if err := fn(ctx, o, body); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) applyScheduledRenewal(ctx context.Context, o *order.Order) {
	for _, fn := range h.scheduledRenewal {
		fn(ctx, o)
	}
}
