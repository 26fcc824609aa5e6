package controller

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	paymentApp "github.com/cassiomorais/hutko-gateway/internal/application/payment"
	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
	"github.com/cassiomorais/hutko-gateway/internal/infrastructure/observability"
)

// CallbackController receives asynchronous payment notifications from the
// processor. The processor delivers either a JSON document or a classic form
// POST, depending on merchant portal settings; both decode into the same
// field map.
type CallbackController struct {
	callbacks *paymentApp.HandleCallbackUseCase
	metrics   *observability.Metrics
}

// NewCallbackController creates a new CallbackController. metrics may be nil.
func NewCallbackController(callbacks *paymentApp.HandleCallbackUseCase, metrics *observability.Metrics) *CallbackController {
	return &CallbackController{callbacks: callbacks, metrics: metrics}
}

// Handle handles POST /callbacks/hutko
func (h *CallbackController) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCallbackBody(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.callbacks.Execute(r.Context(), body); err != nil {
		h.count(body, "rejected")
		writeError(w, err)
		return
	}
	h.count(body, "accepted")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CallbackController) count(body hutko.Fields, result string) {
	if h.metrics == nil {
		return
	}
	status := body.Str("response_status")
	if status == "" {
		status = "unknown"
	}
	h.metrics.CallbacksTotal.WithLabelValues(status, result).Inc()
}

// decodeCallbackBody parses the notification into fields. JSON numbers keep
// their wire form so the signature recomputes byte for byte.
func decodeCallbackBody(r *http.Request) (hutko.Fields, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	if strings.Contains(mediaType, "json") {
		fields := hutko.Fields{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, domainErrors.NewValidationError("body", "invalid form body: "+err.Error())
	}
	fields := hutko.Fields{}
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields, nil
}
