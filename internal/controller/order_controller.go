package controller

import (
	"net/http"
	"strconv"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderController handles order-related HTTP requests.
type OrderController struct {
	orders   order.Repository
	sessions *paymentApp.CreateSessionUseCase
	refunds  *paymentApp.RefundUseCase
	captures *paymentApp.CapturePreorderUseCase
	metrics  *observability.Metrics
}

// NewOrderController creates a new OrderController. metrics may be nil.
func NewOrderController(
	orders order.Repository,
	sessions *paymentApp.CreateSessionUseCase,
	refunds *paymentApp.RefundUseCase,
	captures *paymentApp.CapturePreorderUseCase,
	metrics *observability.Metrics,
) *OrderController {
	return &OrderController{
		orders:   orders,
		sessions: sessions,
		refunds:  refunds,
		captures: captures,
		metrics:  metrics,
	}
}

// Create handles POST /api/v1/orders
func (h *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		customerID = parseUUID(*req.CustomerID)
		if customerID == nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid customer_id", Code: "invalid_id"})
			return
		}
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	o, err := order.New(
		reference,
		order.Kind(req.Kind),
		customerID,
		req.CustomerEmail,
		order.Amount{ValueCents: floatToCents(req.Amount), Currency: req.Currency},
		req.Description,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.orders.Create(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromOrder(o))
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(o))
}

// List handles GET /api/v1/orders
func (h *OrderController) List(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}
	if s := r.URL.Query().Get("kind"); s != "" {
		kind := order.Kind(s)
		filter.Kind = &kind
	}
	if s := r.URL.Query().Get("customer_id"); s != "" {
		if id := parseUUID(s); id != nil {
			filter.CustomerID = id
		}
	}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filter.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	filter.SortBy = r.URL.Query().Get("sort_by")
	filter.SortOrder = r.URL.Query().Get("sort_order")

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, FromOrder(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNotes handles GET /api/v1/orders/{id}/notes
func (h *OrderController) GetNotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	notes, err := h.orders.GetNotes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, FromNote(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSession handles POST /api/v1/orders/{id}/session
func (h *OrderController) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	session, err := h.sessions.Execute(r.Context(), id)
	if err != nil {
		if h.metrics != nil {
			h.metrics.SessionsTotal.WithLabelValues("unknown", "error").Inc()
		}
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SessionsTotal.WithLabelValues(string(session.Mode), "success").Inc()
	}

	writeJSON(w, http.StatusCreated, session)
}

// Refund handles POST /api/v1/orders/{id}/refund
func (h *OrderController) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	var req RefundRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.refunds.Execute(r.Context(), id, floatToCents(req.Amount), req.Reason); err != nil {
		if h.metrics != nil {
			h.metrics.RefundsTotal.WithLabelValues("error").Inc()
		}
		writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RefundsTotal.WithLabelValues("success").Inc()
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromOrder(o))
}

// Capture handles POST /api/v1/orders/{id}/capture
func (h *OrderController) Capture(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	if err := h.captures.Execute(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromOrder(o))
}
