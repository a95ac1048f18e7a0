package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/merchkit/backoffice/internal/domain/order"
	"github.com/merchkit/backoffice/internal/domain/user"
)

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID      string             `json:"customerId"`
	Items           []orderItemRequest `json:"items"`
	ShippingAddress order.Address      `json:"shippingAddress"`
	BillingAddress  order.Address      `json:"billingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	CouponCode      string             `json:"couponCode"`
	Notes           string             `json:"notes"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Customers order for themselves; staff may place orders on behalf
	// of any customer.
	customerID := req.CustomerID
	if claims.Role == string(user.RoleCustomer) || customerID == "" {
		customerID = claims.UserID
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductRef: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		CustomerID:      customerID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	params := order.ListParams{
		Params:     listParams(r),
		Status:     order.Status(r.URL.Query().Get("status")),
		CustomerID: r.URL.Query().Get("customer"),
	}
	// Customers see only their own orders; staff may filter freely.
	if claims, ok := claimsFrom(r.Context()); ok && claims.Role == string(user.RoleCustomer) {
		params.CustomerID = claims.UserID
	}
	items, page, err := h.orderList.List(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, items, page)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderList.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	// Customers may only see their own orders.
	if claims, ok := claimsFrom(r.Context()); ok &&
		claims.Role == string(user.RoleCustomer) && o.CustomerID != claims.UserID {
		respondError(w, http.StatusNotFound, order.ErrOrderNotFound.Error())
		return
	}
	respond(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.orders.TransitionStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateOrderPayment(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	o, err := h.orders.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orderList.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
