package checkout

import (
	"errors"
	"net/http"

	"github.com/noah-isme/pizzeria-storefront/internal/common"
)

// Handler exposes checkout over HTTP.
type Handler struct {
	Svc *Service
}

// Checkout submits the session's cart as an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	sessionID, err := common.SessionID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var payload Request
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	receipt, err := h.Svc.Submit(r.Context(), sessionID, payload)
	if err != nil {
		var failure *SubmissionFailure
		if errors.As(err, &failure) {
			// The order still reaches the merchant through the manual channel.
			common.Data(w, http.StatusAccepted, failure.Receipt)
			return
		}
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, receipt)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	if common.WriteAppError(w, err) {
		return
	}
	switch {
	case errors.Is(err, common.ErrInvalidSession):
		common.JSONError(w, http.StatusBadRequest, "INVALID_SESSION", err.Error(), nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", err.Error(), nil)
	case errors.Is(err, ErrNotConfigured):
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout failed", nil)
	}
}
