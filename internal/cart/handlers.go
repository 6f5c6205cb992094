package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/pizzeria-storefront/internal/common"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

// Viewer renders the priced cart for a session.
type Viewer interface {
	View(ctx context.Context, sessionID string) (any, error)
}

// Handler wires cart services to HTTP. Every mutation answers with the recomputed view.
type Handler struct {
	Svc  *Service
	View Viewer
}

// CreateSession issues a new storefront session id.
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusCreated, map[string]any{"sessionId": uuid.NewString()})
}

// Get returns the cart view.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, sessionID, http.StatusOK, nil)
}

// AddItem adds a plain, personalized or combo product.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload AddRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	line, err := h.Svc.Add(r.Context(), sessionID, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sessionID, http.StatusCreated, map[string]any{"line": line})
}

// UpdateItem sets a line's quantity. Zero removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Quantity *int `json:"quantity" validate:"required"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Svc.SetQuantity(r.Context(), sessionID, chi.URLParam(r, "key"), *payload.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sessionID, http.StatusOK, nil)
}

// RemoveItem deletes a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Remove(r.Context(), sessionID, chi.URLParam(r, "key")); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sessionID, http.StatusOK, nil)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Clear(r.Context(), sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sessionID, http.StatusOK, nil)
}

// SetDelivery stores the delivery mode. Unknown labels are rejected.
func (h *Handler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Mode string `json:"mode" validate:"required"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	mode, ok := shipping.LookupMode(payload.Mode)
	if !ok {
		h.writeError(w, common.FieldError("mode", "must be delivery or pickup"))
		return
	}
	if err := h.Svc.SetDeliveryMode(r.Context(), sessionID, mode); err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sessionID, http.StatusOK, nil)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return "", false
	}
	sessionID, err := common.SessionID(r)
	if err != nil {
		h.writeError(w, err)
		return "", false
	}
	return sessionID, true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sessionID string, status int, extra map[string]any) {
	data := map[string]any{}
	for k, v := range extra {
		data[k] = v
	}
	if h.View != nil {
		view, err := h.View.View(r.Context(), sessionID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		data["cart"] = view
	} else {
		ledger, mode, err := h.Svc.Get(r.Context(), sessionID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		data["cart"] = map[string]any{"lines": ledger.Lines(), "deliveryMode": mode, "subtotal": ledger.Subtotal()}
	}
	common.Data(w, status, data)
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
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCustomization):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProductNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrProductUnavailable):
		common.JSONError(w, http.StatusConflict, "UNAVAILABLE", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
