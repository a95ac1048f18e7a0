package handler

import (
	"net/http"

	"github.com/merchkit/backoffice/internal/domain/settings"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.Settings
	if err := decode(r, &s); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.TaxRate.IsNegative() || s.ShippingFee.IsNegative() {
		respondError(w, http.StatusBadRequest, "tax rate and shipping fee must not be negative")
		return
	}
	saved, err := h.settings.Put(r.Context(), &s)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, saved)
}
