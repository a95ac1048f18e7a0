package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/domain/contact"
	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/media"
	"github.com/merchkit/backoffice/internal/domain/order"
	"github.com/merchkit/backoffice/internal/domain/review"
	"github.com/merchkit/backoffice/internal/domain/user"
	"github.com/merchkit/backoffice/internal/listing"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Message string `json:"message"`
}

// listBody is the uniform list envelope.
type listBody struct {
	Items      any                `json:"items"`
	Pagination listing.Pagination `json:"pagination"`
}

func respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondList(w http.ResponseWriter, items any, p listing.Pagination) {
	respond(w, http.StatusOK, listBody{Items: items, Pagination: p})
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respond(w, code, errorBody{Message: msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// respondDomainError maps a domain error to its HTTP status. Unmatched
// errors are logged and reported as a plain 500 so internals never leak
// to clients.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if code, msg, ok := mapDomainError(err); ok {
		respondError(w, code, msg)
		return
	}
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

func mapDomainError(err error) (int, string, bool) {
	switch {
	// Not found.
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, contact.ErrNotFound),
		errors.Is(err, media.ErrNotFound):
		return http.StatusNotFound, err.Error(), true

	// Conflicts.
	case errors.Is(err, coupon.ErrCodeExists),
		errors.Is(err, catalog.ErrSlugExists),
		errors.Is(err, catalog.ErrSKUExists),
		errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict, err.Error(), true

	// Validation.
	case errors.Is(err, coupon.ErrLimitBelowUsage),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrMissingCustomer),
		errors.Is(err, order.ErrMissingPayment),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, contact.ErrUnknownStatus):
		return http.StatusBadRequest, err.Error(), true
	}

	var (
		invalidCoupon  *order.InvalidCouponError
		invalidQty     *order.InvalidQuantityError
		missingProduct *order.ProductNotFoundError
		missingField   *order.MissingAddressFieldError
		unknownStatus  *order.UnknownStatusError
		badTransition  *order.InvalidTransitionError
	)
	switch {
	case errors.As(err, &invalidCoupon),
		errors.As(err, &invalidQty),
		errors.As(err, &missingProduct),
		errors.As(err, &missingField),
		errors.As(err, &unknownStatus),
		errors.As(err, &badTransition):
		return http.StatusBadRequest, err.Error(), true
	}

	return 0, "", false
}

// listParams reads the shared list query parameters.
func listParams(r *http.Request) listing.Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return listing.Params{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
		Desc:   q.Get("order") == "desc",
	}.Normalize()
}

// boolParam parses an optional boolean query parameter, nil when absent
// or malformed.
func boolParam(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
