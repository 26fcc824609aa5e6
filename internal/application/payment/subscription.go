package payment

import (
	"context"
	"errors"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/domain/token"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/rs/zerolog"
)

// RegisterSubscriptionHooks wires recurring-payment behavior into the
// checkout and callback flows. Subscription checkouts always request a
// rectoken; a zero-total signup (free trial) is turned into a 1-cent card
// verification. Accepted callbacks persist any rectoken they carry so
// renewals can charge it later.
func RegisterSubscriptionHooks(h *Hooks, tokens token.Repository, gatewayID string, logger zerolog.Logger) {
	h.OnBeforeCheckoutParams(func(_ context.Context, o *order.Order, fields hutko.Fields) {
		if o.Kind != order.KindSubscription {
			return
		}
		fields["required_rectoken"] = "Y"
		if o.Amount.ValueCents == 0 {
			o.AddNote("Payment free trial verification")
			fields["verification"] = "Y"
			fields["amount"] = 1
		}
	})

	h.OnCallbackAccepted(func(ctx context.Context, o *order.Order, body hutko.Fields) error {
		value := body.Str("rectoken")
		if value == "" || o.CustomerID == nil {
			return nil
		}

		existing, err := tokens.GetByValue(ctx, *o.CustomerID, value)
		switch {
		case err == nil:
			existing.Touch()
			if err := tokens.Save(ctx, existing); err != nil {
				return err
			}
		case errors.Is(err, domainErrors.ErrTokenNotFound):
			tok, err := token.New(*o.CustomerID, gatewayID, value)
			if err != nil {
				return err
			}
			if err := tokens.Save(ctx, tok); err != nil {
				return err
			}
		default:
			return err
		}

		logger.Info().
			Str("reference", o.Reference).
			Str("customer_id", o.CustomerID.String()).
			Msg("recurring token stored")
		return nil
	})

	h.OnScheduledRenewal(func(_ context.Context, o *order.Order) {
		logger.Info().
			Str("reference", o.Reference).
			Int64("amount_cents", o.Amount.ValueCents).
			Msg("subscription renewal due")
	})
}
