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

// CapturePreorderUseCase settles a preauthorized pre-order when it is
// released. Capture success completes the order; any other outcome fails it
// with the processor's status and request id in the audit trail.
type CapturePreorderUseCase struct {
	orders  order.Repository
	gateway ProcessorGateway
	locker  OrderLocker
	logger  zerolog.Logger
}

// NewCapturePreorderUseCase creates a new CapturePreorderUseCase.
func NewCapturePreorderUseCase(orders order.Repository, gateway ProcessorGateway, locker OrderLocker, logger zerolog.Logger) *CapturePreorderUseCase {
	return &CapturePreorderUseCase{orders: orders, gateway: gateway, locker: locker, logger: logger}
}

// Execute captures the preauthorized charge for the order.
func (uc *CapturePreorderUseCase) Execute(ctx context.Context, orderID uuid.UUID) error {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	return uc.locker.WithOrderLock(ctx, o.Reference, func(ctx context.Context) error {
		o, err := uc.orders.GetByReference(ctx, o.Reference)
		if err != nil {
			return err
		}
		return uc.capture(ctx, o)
	})
}

func (uc *CapturePreorderUseCase) capture(ctx context.Context, o *order.Order) error {
	if o.Kind != order.KindPreorder || o.Status != order.StatusAuthorized {
		return domainErrors.NewDomainError(
			"order_not_capturable",
			fmt.Sprintf("order is %s %s, capture requires an authorized preorder", o.Kind, o.Status),
			domainErrors.ErrInvalidStateTransition,
		)
	}

	resp, err := uc.gateway.Capture(ctx, hutko.Fields{
		"order_id": o.Reference,
		"currency": o.Amount.Currency,
		"amount":   o.Amount.ValueCents,
	})
	if err != nil {
		return uc.fail(ctx, o, "Pre-order payment failed. Reason: "+err.Error(), err)
	}

	if resp.Get("capture_status") != "captured" {
		reason := fmt.Sprintf("Capture transaction: %s. %s. Request_id: %s",
			resp.Status(), resp.ErrorMessage(), resp.RequestID())
		return uc.fail(ctx, o, reason, nil)
	}

	o.AddNote("hutko capture successful")
	transactionID := ""
	if o.TransactionID != nil {
		transactionID = *o.TransactionID
	}
	if err := o.MarkPaid(transactionID); err != nil {
		return err
	}
	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}

	uc.logger.Info().Str("reference", o.Reference).Msg("preorder captured")
	return nil
}

func (uc *CapturePreorderUseCase) fail(ctx context.Context, o *order.Order, reason string, cause error) error {
	if err := o.MarkFailed(order.StatusFailed, reason); err != nil {
		return err
	}
	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}
	if cause != nil {
		return cause
	}
	return domainErrors.NewDomainError("capture_failed", reason, nil)
}
