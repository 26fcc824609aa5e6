package payment

import (
	"context"

	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/cassiomorais/hutko-gateway/internal/hutko"
)

// RegisterPreorderHooks makes checkout sessions for pre-orders request a
// preauthorization instead of an immediate charge. The hold is settled later
// by CapturePreorderUseCase when the pre-order is released.
func RegisterPreorderHooks(h *Hooks) {
	h.OnBeforeCheckoutParams(func(_ context.Context, o *order.Order, fields hutko.Fields) {
		if o.Kind != order.KindPreorder {
			return
		}
		fields["preauth"] = "Y"
	})
}
