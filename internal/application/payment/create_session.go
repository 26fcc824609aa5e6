package payment

import (
	"context"

	"github.com/cassiomorais/hutko-gateway/internal/checkout"
	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CreateSessionUseCase builds the signed checkout request for an order and
// obtains a payment session from the processor. Session issuance never
// changes the order's payment state; the order stays pending until a
// callback arrives.
type CreateSessionUseCase struct {
	orders      order.Repository
	selector    SessionCreator
	hooks       *Hooks
	responseURL string
	callbackURL string
	logger      zerolog.Logger
}

// NewCreateSessionUseCase creates a new CreateSessionUseCase.
func NewCreateSessionUseCase(
	orders order.Repository,
	selector SessionCreator,
	hooks *Hooks,
	responseURL string,
	callbackURL string,
	logger zerolog.Logger,
) *CreateSessionUseCase {
	return &CreateSessionUseCase{
		orders:      orders,
		selector:    selector,
		hooks:       hooks,
		responseURL: responseURL,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// Execute creates a payment session for the order.
func (uc *CreateSessionUseCase) Execute(ctx context.Context, orderID uuid.UUID) (*checkout.Session, error) {
	o, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsTerminal() {
		return nil, domainErrors.NewDomainError(
			"order_not_payable",
			"order is already in terminal state "+string(o.Status),
			domainErrors.ErrOrderAlreadyPaid,
		)
	}

	fields := hutko.Fields{
		"order_id":            o.Reference,
		"order_desc":          o.Description,
		"amount":              o.Amount.ValueCents,
		"currency":            o.Amount.Currency,
		"sender_email":        o.CustomerEmail,
		"response_url":        uc.responseURL,
		"server_callback_url": uc.callbackURL,
	}
	uc.hooks.applyBeforeCheckoutParams(ctx, o, fields)

	session, err := uc.selector.CreateSession(ctx, fields)
	if err != nil {
		o.AddNote("hutko checkout session failed: " + err.Error())
		if updateErr := uc.orders.Update(ctx, o); updateErr != nil {
			uc.logger.Error().Err(updateErr).Str("order_id", o.ID.String()).Msg("failed to record session failure note")
		}
		return nil, err
	}

	o.AddNote("hutko checkout session created (" + string(session.Mode) + ")")
	if err := uc.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("order_id", o.ID.String()).
		Str("reference", o.Reference).
		Str("mode", string(session.Mode)).
		Msg("checkout session created")

	return session, nil
}
