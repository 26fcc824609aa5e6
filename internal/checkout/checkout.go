// Package checkout selects and assembles the presentation mode for a payment
// session: a hosted redirect to the processor's page, or an embedded widget
// rendered locally with a short-lived token.
package checkout

import (
	"context"

	"github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
)

// Mode is the merchant-level integration mode. It is configuration, chosen
// once per merchant, not per request.
type Mode string

const (
	ModeHosted   Mode = "hosted"
	ModeEmbedded Mode = "embedded"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHosted, ModeEmbedded:
		return Mode(s), nil
	case "":
		return ModeHosted, nil
	default:
		return "", errors.NewValidationError("integration_type", "must be hosted or embedded")
	}
}

// Options controls how the embedded widget presents itself. Card-only and
// multi-method checkouts are variants of this one structure.
type Options struct {
	Methods         []string `json:"methods"`
	MethodsDisabled []string `json:"methods_disabled"`
	ActiveTab       string   `json:"active_tab"`
	CardIcons       []string `json:"card_icons"`
	Theme           string   `json:"theme,omitempty"`
	Locale          string   `json:"locale,omitempty"`
}

// CardOnlyOptions returns the widget option set for card payments.
func CardOnlyOptions() Options {
	return Options{
		Methods:         []string{"card"},
		MethodsDisabled: []string{},
		ActiveTab:       "card",
		CardIcons:       []string{"mastercard", "visa"},
	}
}

// MultiMethodOptions returns the widget option set for every payment method
// the merchant account supports.
func MultiMethodOptions() Options {
	return Options{
		Methods:         []string{"card", "wallets", "banklinks_eu"},
		MethodsDisabled: []string{},
		ActiveTab:       "card",
		CardIcons:       []string{"mastercard", "visa"},
	}
}

// Session is the presentation artifact handed back to the storefront. Exactly
// one of RedirectURL or Token is set, according to Mode.
type Session struct {
	Mode        Mode     `json:"mode"`
	RedirectURL string   `json:"redirect_url,omitempty"`
	Token       string   `json:"token,omitempty"`
	Options     *Options `json:"options,omitempty"`
}

// SessionClient is the slice of the processor client the selector needs.
type SessionClient interface {
	CheckoutURL(ctx context.Context, fields hutko.Fields) (string, error)
	CheckoutToken(ctx context.Context, fields hutko.Fields) (string, error)
}

// Selector builds sessions for the configured integration mode.
type Selector struct {
	mode    Mode
	options Options
	client  SessionClient
}

// NewSelector creates a selector for the given mode and widget options.
func NewSelector(mode Mode, options Options, client SessionClient) *Selector {
	return &Selector{mode: mode, options: options, client: client}
}

// Mode returns the configured integration mode.
func (s *Selector) Mode() Mode { return s.mode }

// CreateSession obtains the mode-appropriate session artifact from the
// processor. Completion always arrives later through the callback path,
// whichever mode is in use.
func (s *Selector) CreateSession(ctx context.Context, fields hutko.Fields) (*Session, error) {
	switch s.mode {
	case ModeEmbedded:
		token, err := s.client.CheckoutToken(ctx, fields)
		if err != nil {
			return nil, err
		}
		opts := s.options
		return &Session{Mode: ModeEmbedded, Token: token, Options: &opts}, nil
	default:
		url, err := s.client.CheckoutURL(ctx, fields)
		if err != nil {
			return nil, err
		}
		return &Session{Mode: ModeHosted, RedirectURL: url}, nil
	}
}
