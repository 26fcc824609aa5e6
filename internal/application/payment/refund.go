package payment

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxRefundCommentLen = 1024

// RefundUseCase reverses a settled payment through the processor. A
// "processing" reverse status is provisional success: the order moves to
// refunding with an audit note and the caller sees no error. A declined or
// unrecognized status leaves the order state unchanged and surfaces an error
// whose text is already recorded on the order.
type RefundUseCase struct {
	orders  order.Repository
	gateway ProcessorGateway
	locker  OrderLocker
	logger  zerolog.Logger
}

// NewRefundUseCase creates a new RefundUseCase.
func NewRefundUseCase(orders order.Repository, gateway ProcessorGateway, locker OrderLocker, logger zerolog.Logger) *RefundUseCase {
	return &RefundUseCase{orders: orders, gateway: gateway, locker: locker, logger: logger}
}

// Execute refunds amountCents of the order; zero or negative means a full
// refund. The reason is forwarded to the processor, truncated to 1024 chars.
func (uc *RefundUseCase) Execute(ctx context.Context, orderID uuid.UUID, amountCents int64, reason string) error {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	return uc.locker.WithOrderLock(ctx, o.Reference, func(ctx context.Context) error {
		o, err := uc.orders.GetByReference(ctx, o.Reference)
		if err != nil {
			return err
		}
		return uc.refund(ctx, o, amountCents, reason)
	})
}

func (uc *RefundUseCase) refund(ctx context.Context, o *order.Order, amountCents int64, reason string) error {
	if !o.Refundable() {
		return domainErrors.NewDomainError(
			"order_not_refundable",
			"cannot refund order in state "+string(o.Status),
			domainErrors.ErrInvalidStateTransition,
		)
	}

	if amountCents <= 0 {
		amountCents = o.Amount.ValueCents
	}
	if len(reason) > maxRefundCommentLen {
		reason = reason[:maxRefundCommentLen]
	}

	resp, err := uc.gateway.Reverse(ctx, hutko.Fields{
		"order_id": o.Reference,
		"amount":   amountCents,
		"currency": o.Amount.Currency,
		"comment":  reason,
	})
	if err != nil {
		o.AddNote("Refund hutko error: " + err.Error())
		if updateErr := uc.orders.Update(ctx, o); updateErr != nil {
			uc.logger.Error().Err(updateErr).Str("order_id", o.ID.String()).Msg("failed to record refund error note")
		}
		return err
	}

	reverseStatus := resp.Get("reverse_status")
	switch reverseStatus {
	case "approved":
		if err := uc.transitionRefunded(o); err != nil {
			return err
		}
		o.AddNote("Refund hutko status: approved")
		return uc.orders.Update(ctx, o)

	case "processing":
		// async-pending refund: provisional success
		if o.Status != order.StatusRefunding {
			if err := o.MarkRefunding(); err != nil {
				return err
			}
		}
		o.AddNote("Refund hutko status: processing")
		return uc.orders.Update(ctx, o)

	default:
		if reverseStatus != "declined" {
			reverseStatus = "Unknown"
		}
		note := "Refund hutko status: " + reverseStatus
		o.AddNote(note)
		if err := uc.orders.Update(ctx, o); err != nil {
			return err
		}
		return domainErrors.NewDomainError("refund_declined", note, nil)
	}
}

func (uc *RefundUseCase) transitionRefunded(o *order.Order) error {
	if o.CanTransitionTo(order.StatusRefunded) {
		return o.MarkRefunded()
	}
	return fmt.Errorf("refund approved for order in state %s: %w", o.Status, domainErrors.ErrInvalidStateTransition)
}
