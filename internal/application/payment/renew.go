package payment

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/domain/token"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RenewSubscriptionUseCase charges a stored recurring token for a due
// subscription renewal order. A zero-amount renewal completes without
// contacting the processor at all.
type RenewSubscriptionUseCase struct {
	orders    order.Repository
	tokens    token.Repository
	gateway   ProcessorGateway
	locker    OrderLocker
	hooks     *Hooks
	gatewayID string
	logger    zerolog.Logger
}

// NewRenewSubscriptionUseCase creates a new RenewSubscriptionUseCase.
func NewRenewSubscriptionUseCase(
	orders order.Repository,
	tokens token.Repository,
	gateway ProcessorGateway,
	locker OrderLocker,
	hooks *Hooks,
	gatewayID string,
	logger zerolog.Logger,
) *RenewSubscriptionUseCase {
	return &RenewSubscriptionUseCase{
		orders:    orders,
		tokens:    tokens,
		gateway:   gateway,
		locker:    locker,
		hooks:     hooks,
		gatewayID: gatewayID,
		logger:    logger,
	}
}

// Execute charges the renewal order.
func (uc *RenewSubscriptionUseCase) Execute(ctx context.Context, orderID uuid.UUID) error {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	return uc.locker.WithOrderLock(ctx, o.Reference, func(ctx context.Context) error {
		o, err := uc.orders.GetByReference(ctx, o.Reference)
		if err != nil {
			return err
		}
		return uc.renew(ctx, o)
	})
}

func (uc *RenewSubscriptionUseCase) renew(ctx context.Context, o *order.Order) error {
	if o.Kind != order.KindSubscription {
		return domainErrors.NewDomainError("order_not_renewable", "order is not a subscription order", nil)
	}
	if o.Status != order.StatusPending {
		// already settled by an earlier run or a callback
		uc.logger.Info().Str("reference", o.Reference).Str("status", string(o.Status)).Msg("renewal order not pending, skipping")
		return nil
	}

	uc.hooks.applyScheduledRenewal(ctx, o)

	// $0 renewal (free trial) settles without a processor call
	if o.Amount.ValueCents == 0 {
		o.AddNote("Zero-amount renewal completed without charge")
		if err := o.MarkPaid(""); err != nil {
			return err
		}
		return uc.orders.Update(ctx, o)
	}

	if o.CustomerID == nil {
		return uc.fail(ctx, o, "Subscription payment failed. Reason: customer not found", domainErrors.ErrCustomerRequired)
	}

	tok, err := uc.tokens.GetLatest(ctx, *o.CustomerID, uc.gatewayID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrTokenNotFound) {
			return uc.fail(ctx, o, "Subscription payment failed. Reason: token expired, or token not found", err)
		}
		return err
	}

	resp, err := uc.gateway.Recurring(ctx, hutko.Fields{
		"order_id":     o.Reference,
		"amount":       o.Amount.ValueCents,
		"rectoken":     tok.Value,
		"sender_email": o.CustomerEmail,
		"currency":     o.Amount.Currency,
		"order_desc":   "Recurring payment for: " + o.Reference,
	})
	if err != nil {
		return uc.fail(ctx, o, "Subscription payment failed. Reason: "+err.Error(), err)
	}

	paymentID := resp.Get("payment_id")
	if resp.Get("order_status") != "approved" {
		reason := fmt.Sprintf("Transaction error: order %s. hutko ID: %s", resp.Get("order_status"), paymentID)
		return uc.fail(ctx, o, reason, nil)
	}

	if err := o.MarkPaid(paymentID); err != nil {
		return err
	}
	o.AddNote("hutko subscription payment successful. hutko ID: " + paymentID)
	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}

	uc.logger.Info().Str("reference", o.Reference).Str("payment_id", paymentID).Msg("subscription renewed")
	return nil
}

func (uc *RenewSubscriptionUseCase) fail(ctx context.Context, o *order.Order, reason string, cause error) error {
	if err := o.MarkFailed(order.StatusFailed, reason); err != nil {
		return err
	}
	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}
	if cause != nil {
		return cause
	}
	return domainErrors.NewDomainError("renewal_failed", reason, nil)
}
