package payment_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/checkout"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/testutil"
	"github.com/rs/zerolog"
)

// mockSessionCreator implements paymentApp.SessionCreator for tests.
type mockSessionCreator struct {
	mode   checkout.Mode
	fields hutko.Fields
	err    error
}

func (m *mockSessionCreator) CreateSession(_ context.Context, fields hutko.Fields) (*checkout.Session, error) {
	m.fields = fields.Clone()
	if m.err != nil {
		return nil, m.err
	}
	return &checkout.Session{Mode: m.mode, RedirectURL: "https://pay.hutko.org/checkout?token=abc"}, nil
}

func (m *mockSessionCreator) Mode() checkout.Mode { return m.mode }

func newSessionUC(repo *testutil.MockOrderRepository, creator *mockSessionCreator, hooks *paymentApp.Hooks) *paymentApp.CreateSessionUseCase {
	if hooks == nil {
		hooks = paymentApp.NewHooks()
	}
	return paymentApp.NewCreateSessionUseCase(
		repo,
		creator,
		hooks,
		"https://shop.example.com/thank-you",
		"https://shop.example.com/callbacks/hutko",
		zerolog.Nop(),
	)
}

func TestCreateSession_BuildsCheckoutFields(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockOrderRepository()
	creator := &mockSessionCreator{mode: checkout.ModeHosted}

	o := testutil.NewTestOrder(order.KindPurchase, 150_00, "USD")
	repo.AddOrder(o)

	uc := newSessionUC(repo, creator, nil)

	session, err := uc.Execute(ctx, o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.RedirectURL == "" {
		t.Error("expected redirect URL for hosted session")
	}

	got := creator.fields
	if got.Str("order_id") != o.Reference {
		t.Errorf("expected order_id %s, got %s", o.Reference, got.Str("order_id"))
	}
	if got.Str("amount") != "15000" {
		t.Errorf("expected amount 15000, got %s", got.Str("amount"))
	}
	if got.Str("currency") != "USD" {
		t.Errorf("expected currency USD, got %s", got.Str("currency"))
	}
	if got.Str("sender_email") != o.CustomerEmail {
		t.Errorf("expected sender_email %s, got %s", o.CustomerEmail, got.Str("sender_email"))
	}
	if got.Str("response_url") != "https://shop.example.com/thank-you" {
		t.Errorf("unexpected response_url %s", got.Str("response_url"))
	}
	if got.Str("server_callback_url") != "https://shop.example.com/callbacks/hutko" {
		t.Errorf("unexpected server_callback_url %s", got.Str("server_callback_url"))
	}
}

func TestCreateSession_DoesNotChangeOrderStatus(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockOrderRepository()
	creator := &mockSessionCreator{mode: checkout.ModeHosted}

	o := testutil.NewTestOrder(order.KindPurchase, 50_00, "EUR")
	repo.AddOrder(o)

	uc := newSessionUC(repo, creator, nil)

	if _, err := uc.Execute(ctx, o.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.GetOrderByID(o.ID)
	if stored.Status != order.StatusPending {
		t.Errorf("session issuance must not change payment status, got %s", stored.Status)
	}
	if len(stored.Notes) == 0 {
		t.Error("expected an audit note for the created session")
	}
}

func TestCreateSession_TerminalOrderRejected(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockOrderRepository()
	creator := &mockSessionCreator{mode: checkout.ModeHosted}

	o := testutil.NewCompletedOrder(order.KindPurchase, 50_00, "USD")
	repo.AddOrder(o)

	uc := newSessionUC(repo, creator, nil)

	_, err := uc.Execute(ctx, o.ID)
	if err == nil {
		t.Fatal("expected error for settled order, got nil")
	}
	if creator.fields != nil {
		t.Error("no processor call expected for settled order")
	}
}

func TestCreateSession_ProcessorFailureRecordedOnOrder(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockOrderRepository()
	creator := &mockSessionCreator{mode: checkout.ModeHosted, err: errors.New("gateway unavailable")}

	o := testutil.NewTestOrder(order.KindPurchase, 50_00, "USD")
	repo.AddOrder(o)

	uc := newSessionUC(repo, creator, nil)

	if _, err := uc.Execute(ctx, o.ID); err == nil {
		t.Fatal("expected error, got nil")
	}

	stored := repo.GetOrderByID(o.ID)
	if stored.Status != order.StatusPending {
		t.Errorf("failed session must leave the order pending, got %s", stored.Status)
	}
	found := false
	for _, n := range stored.Notes {
		if strings.Contains(n.Text, "gateway unavailable") {
			found = true
		}
	}
	if !found {
		t.Error("expected failure note with the processor error text")
	}
}

func TestCreateSession_HooksTransformFields(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockOrderRepository()
	creator := &mockSessionCreator{mode: checkout.ModeHosted}

	o := testutil.NewTestOrder(order.KindPreorder, 200_00, "USD")
	repo.AddOrder(o)

	hooks := paymentApp.NewHooks()
	paymentApp.RegisterPreorderHooks(hooks)

	uc := newSessionUC(repo, creator, hooks)

	if _, err := uc.Execute(ctx, o.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creator.fields.Str("preauth") != "Y" {
		t.Errorf("expected preauth Y for pre-order checkout, got %q", creator.fields.Str("preauth"))
	}
}
