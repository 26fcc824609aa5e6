package controller

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/testutil"
	"github.com/rs/zerolog"
)

func newCallbackController(repo *testutil.MockOrderRepository, validator *testutil.MockCallbackValidator) *CallbackController {
	uc := paymentApp.NewHandleCallbackUseCase(
		repo,
		validator,
		&testutil.NoopLocker{},
		paymentApp.NewHooks(),
		paymentApp.DefaultStatusMapping(),
		zerolog.Nop(),
	)
	return NewCallbackController(uc, nil)
}

func TestCallbackController_JSONBody(t *testing.T) {
	repo := testutil.NewMockOrderRepository()
	o := testutil.NewTestOrder(order.KindPurchase, 120_00, "USD")
	repo.AddOrder(o)

	h := newCallbackController(repo, &testutil.MockCallbackValidator{})

	body := `{"order_id":"` + o.Reference + `","response_status":"approved","payment_id":805243621,"amount":12000}`
	req := httptest.NewRequest(http.MethodPost, "/callbacks/hutko", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated := repo.GetOrderByID(o.ID)
	if updated.Status != order.StatusCompleted {
		t.Errorf("expected completed order, got %s", updated.Status)
	}
	if updated.TransactionID == nil || *updated.TransactionID != "805243621" {
		t.Errorf("expected numeric payment_id kept verbatim, got %v", updated.TransactionID)
	}
}

func TestCallbackController_FormBody(t *testing.T) {
	repo := testutil.NewMockOrderRepository()
	o := testutil.NewTestOrder(order.KindPurchase, 120_00, "USD")
	repo.AddOrder(o)

	h := newCallbackController(repo, &testutil.MockCallbackValidator{})

	form := url.Values{}
	form.Set("order_id", o.Reference)
	form.Set("response_status", "approved")
	form.Set("payment_id", "805243622")
	req := httptest.NewRequest(http.MethodPost, "/callbacks/hutko", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if repo.GetOrderByID(o.ID).Status != order.StatusCompleted {
		t.Errorf("expected completed order, got %s", repo.GetOrderByID(o.ID).Status)
	}
}

func TestCallbackController_InvalidSignature(t *testing.T) {
	repo := testutil.NewMockOrderRepository()
	o := testutil.NewTestOrder(order.KindPurchase, 120_00, "USD")
	repo.AddOrder(o)

	h := newCallbackController(repo, &testutil.MockCallbackValidator{
		ValidateFunc: func(hutko.Fields) error { return hutko.ErrInvalidSignature },
	})

	body := `{"order_id":"` + o.Reference + `","response_status":"approved","signature":"bogus"}`
	req := httptest.NewRequest(http.MethodPost, "/callbacks/hutko", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d: %s", http.StatusForbidden, rec.Code, rec.Body.String())
	}
	if repo.GetOrderByID(o.ID).Status != order.StatusPending {
		t.Error("order must stay untouched on signature mismatch")
	}
}

func TestCallbackController_MalformedJSON(t *testing.T) {
	h := newCallbackController(testutil.NewMockOrderRepository(), &testutil.MockCallbackValidator{})

	req := httptest.NewRequest(http.MethodPost, "/callbacks/hutko", bytes.NewReader([]byte(`{"order_id":`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCallbackController_UnknownOrder(t *testing.T) {
	h := newCallbackController(testutil.NewMockOrderRepository(), &testutil.MockCallbackValidator{})

	body := `{"order_id":"no-such-ref","response_status":"approved"}`
	req := httptest.NewRequest(http.MethodPost, "/callbacks/hutko", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
}
