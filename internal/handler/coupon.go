package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/domain/coupon"
)

type couponRequest struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	Value       decimal.Decimal  `json:"value"`
	MinPurchase *decimal.Decimal `json:"minPurchase"`
	MaxDiscount *decimal.Decimal `json:"maxDiscount"`
	ValidFrom   time.Time        `json:"validFrom"`
	ValidUntil  time.Time        `json:"validUntil"`
	Enabled     *bool            `json:"enabled"`
	UsageLimit  *int             `json:"usageLimit"`
}

func (req couponRequest) toDomain() *coupon.Coupon {
	c := &coupon.Coupon{
		Code:        req.Code,
		Kind:        coupon.Kind(req.Kind),
		Value:       req.Value,
		MinPurchase: req.MinPurchase,
		MaxDiscount: req.MaxDiscount,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		Enabled:     true,
		UsageLimit:  req.UsageLimit,
	}
	if req.Enabled != nil {
		c.Enabled = *req.Enabled
	}
	return c
}

// couponView augments the stored coupon with its computed status.
type couponView struct {
	*coupon.Coupon
	Status coupon.Status `json:"status"`
}

func (h *Handler) couponToView(c *coupon.Coupon) couponView {
	return couponView{Coupon: c, Status: coupon.Classify(c, timeNow())}
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	params := coupon.ListParams{
		Params: listParams(r),
		Status: coupon.Status(r.URL.Query().Get("status")),
	}
	items, page, err := h.coupons.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	views := make([]couponView, len(items))
	for i := range items {
		views[i] = h.couponToView(&items[i])
	}
	respondList(w, views, page)
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c := req.toDomain()
	if err := coupon.ValidateWrite(c); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.coupons.Create(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, h.couponToView(c))
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.couponToView(c))
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c := req.toDomain()
	c.Code = chi.URLParam(r, "code")
	if err := coupon.ValidateWrite(c); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.coupons.Update(r.Context(), c); err != nil {
		respondDomainError(w, r, err)
		return
	}
	updated, err := h.coupons.FindByCode(r.Context(), c.Code)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, h.couponToView(updated))
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "coupon deleted"})
}
