package payment

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HandleCallbackUseCase validates an asynchronous processor notification and
// drives the order state machine from its outcome. Transitions for a single
// order are serialized through the order lock.
type HandleCallbackUseCase struct {
	orders    order.Repository
	validator CallbackValidator
	locker    OrderLocker
	hooks     *Hooks
	statuses  StatusMapping
	logger    zerolog.Logger
}

// NewHandleCallbackUseCase creates a new HandleCallbackUseCase.
func NewHandleCallbackUseCase(
	orders order.Repository,
	validator CallbackValidator,
	locker OrderLocker,
	hooks *Hooks,
	statuses StatusMapping,
	logger zerolog.Logger,
) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{
		orders:    orders,
		validator: validator,
		locker:    locker,
		hooks:     hooks,
		statuses:  statuses,
		logger:    logger,
	}
}

// Execute processes one inbound callback body. Validation failures reject the
// callback outright and leave the order untouched; a signature mismatch is
// logged for security review since it may indicate tampering.
func (uc *HandleCallbackUseCase) Execute(ctx context.Context, body hutko.Fields) error {
	if err := uc.validator.Validate(body); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("order_id", body.Str("order_id")).
			Str("merchant_id", body.Str("merchant_id")).
			Msg("rejected hutko callback")
		return err
	}

	reference := body.Str("order_id")
	if reference == "" {
		return domainErrors.NewValidationError("order_id", "missing in callback body")
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("order.reference", reference),
		attribute.String("callback.response_status", body.Str("response_status")),
	)

	return uc.locker.WithOrderLock(ctx, reference, func(ctx context.Context) error {
		o, err := uc.orders.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		return uc.apply(ctx, o, body)
	})
}

func (uc *HandleCallbackUseCase) apply(ctx context.Context, o *order.Order, body hutko.Fields) error {
	status := body.Str("response_status")
	transactionID := body.Str("payment_id")

	switch status {
	case "approved":
		if o.IsTerminal() {
			// duplicate delivery of a settled payment
			uc.logger.Info().Str("reference", o.Reference).Msg("callback for settled order, ignoring")
			return nil
		}
		if o.Kind == order.KindPreorder {
			if err := o.MarkAuthorized(transactionID); err != nil {
				return err
			}
			o.AddNote(fmt.Sprintf("hutko payment preauthorized, awaiting release. hutko ID: %s", transactionID))
		} else {
			if err := o.MarkPaid(transactionID); err != nil {
				return err
			}
			o.AddNote(fmt.Sprintf("hutko payment approved. hutko ID: %s", transactionID))
		}

	case "declined":
		if err := o.MarkFailed(uc.statuses.Declined, callbackFailureNote(body)); err != nil {
			return err
		}

	case "expired":
		if err := o.MarkFailed(uc.statuses.Expired, callbackFailureNote(body)); err != nil {
			return err
		}

	case "processing", "created":
		// intermediate notification, no transition
		o.AddNote("hutko payment status: " + status)

	default:
		return domainErrors.NewDomainError(
			"unknown_callback_status",
			"unrecognized response_status "+status,
			nil,
		)
	}

	if err := uc.orders.Update(ctx, o); err != nil {
		return err
	}

	uc.logger.Info().
		Str("reference", o.Reference).
		Str("response_status", status).
		Str("order_status", string(o.Status)).
		Msg("hutko callback applied")

	return uc.hooks.applyCallbackAccepted(ctx, o, body)
}

func callbackFailureNote(body hutko.Fields) string {
	note := fmt.Sprintf("hutko payment %s", body.Str("response_status"))
	if code := body.Str("response_code"); code != "" {
		note += fmt.Sprintf(" (code %s)", code)
	}
	if desc := body.Str("response_description"); desc != "" {
		note += ": " + desc
	}
	return note
}
