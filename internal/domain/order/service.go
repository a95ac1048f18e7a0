package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/settings"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = errors.New("order items required")
	ErrMissingCustomer = errors.New("customer is required")
	ErrMissingPayment  = errors.New("payment method is required")
	ErrOrderNotFound   = errors.New("order not found")
)

// InvalidQuantityError indicates a line item with a quantity below 1.
type InvalidQuantityError struct {
	ProductRef string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductRef)
}

// ProductNotFoundError indicates a referenced product does not exist.
type ProductNotFoundError struct {
	ProductRef string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductRef)
}

// MissingAddressFieldError indicates an incomplete postal address.
type MissingAddressFieldError struct {
	Which string // "shipping" or "billing"; filled by the service
	Field string
}

func (e *MissingAddressFieldError) Error() string {
	if e.Which == "" {
		return fmt.Sprintf("address field %s is required", e.Field)
	}
	return fmt.Sprintf("%s address field %s is required", e.Which, e.Field)
}

// InvalidCouponError indicates the supplied coupon code cannot be
// redeemed. Order creation hard-fails rather than silently dropping the
// discount, so a customer never pays full price believing a coupon
// applied.
type InvalidCouponError struct {
	Code   string
	Reason error
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("coupon %s not applicable: %s", e.Code, e.Reason)
}

func (e *InvalidCouponError) Unwrap() error { return e.Reason }

// CreateRequest is the input for placing an order.
type CreateRequest struct {
	CustomerID      string
	Items           []ItemRequest
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   string
	CouponCode      string
	Notes           string
}

// ItemRequest references a product by identity; name and price are
// resolved from the catalog at creation time.
type ItemRequest struct {
	ProductRef string
	Quantity   int
}

// Service computes order totals, assigns order numbers and drives the
// status lifecycle.
type Service struct {
	orders   Repository
	products catalog.ProductRepository
	coupons  coupon.Repository
	settings settings.Repository
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(
	orders Repository,
	products catalog.ProductRepository,
	coupons coupon.Repository,
	store settings.Repository,
) *Service {
	return &Service{
		orders:   orders,
		products: products,
		coupons:  coupons,
		settings: store,
		now:      time.Now,
	}
}

// Create validates the request, snapshots product names and prices,
// applies store tax and shipping, evaluates an optional coupon, and
// persists the order. Coupon redemption is applied atomically with the
// insert by the repository.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.CustomerID == "" {
		return nil, ErrMissingCustomer
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.PaymentMethod == "" {
		return nil, ErrMissingPayment
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, tagAddressError(err, "shipping")
	}
	if err := req.BillingAddress.Validate(); err != nil {
		return nil, tagAddressError(err, "billing")
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductRef: item.ProductRef}
		}
		ids[i] = item.ProductRef
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Snapshot name and unit price so later product edits leave the
	// order's historical amounts intact.
	items := make([]LineItem, len(req.Items))
	subtotal := decimal.Zero
	for i, item := range req.Items {
		p, ok := byID[item.ProductRef]
		if !ok {
			return nil, &ProductNotFoundError{ProductRef: item.ProductRef}
		}
		items[i] = LineItem{
			ProductRef: item.ProductRef,
			Name:       p.Name,
			UnitPrice:  p.Price,
			Quantity:   item.Quantity,
		}
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	store, err := s.settings.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load settings")
	}
	tax := decimal.Zero
	if store.EnableTax {
		tax = subtotal.Mul(store.TaxRate).Div(hundred).Round(2)
	}
	shipping := decimal.Zero
	if store.EnableShipping {
		shipping = store.ShippingFee.Round(2)
	}

	discount := decimal.Zero
	couponCode := ""
	if req.CouponCode != "" {
		couponCode = coupon.NormalizeCode(req.CouponCode)
		c, err := s.coupons.FindByCode(ctx, couponCode)
		if err != nil {
			if errors.Is(err, coupon.ErrNotFound) {
				return nil, &InvalidCouponError{Code: couponCode, Reason: err}
			}
			return nil, errors.Wrap(err, "find coupon")
		}
		discount, err = coupon.ComputeDiscount(c, subtotal, s.now())
		if err != nil {
			return nil, &InvalidCouponError{Code: couponCode, Reason: err}
		}
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:              uuid.New().String(),
		CustomerID:      req.CustomerID,
		Items:           items,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Discount:        discount,
		Total:           total.Round(2),
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      couponCode,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		// The coupon may lose its last redemption, or be deleted
		// outright, between validation and commit.
		if errors.Is(err, coupon.ErrUsageLimitReached) || errors.Is(err, coupon.ErrNotFound) {
			return nil, &InvalidCouponError{Code: couponCode, Reason: err}
		}
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// TransitionStatus moves an order to a new fulfilment status, enforcing
// the transition graph.
func (s *Service) TransitionStatus(ctx context.Context, id string, raw string) (*Order, error) {
	next, err := ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(o.Status, next); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, id, next); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	o.Status = next
	return o, nil
}

// SetPaymentStatus updates the payment state; any enum value may follow
// any other since payment events arrive from an external processor out
// of band with fulfilment.
func (s *Service) SetPaymentStatus(ctx context.Context, id string, raw string) (*Order, error) {
	next, err := ParsePaymentStatus(raw)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdatePaymentStatus(ctx, id, next); err != nil {
		return nil, errors.Wrap(err, "update payment status")
	}
	o.PaymentStatus = next
	return o, nil
}

var hundred = decimal.NewFromInt(100)

func tagAddressError(err error, which string) error {
	var maf *MissingAddressFieldError
	if errors.As(err, &maf) {
		maf.Which = which
		return maf
	}
	return err
}
