package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/merchkit/backoffice/internal/listing"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks payment independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is a structured postal record. When an address is present,
// every field is required.
type Address struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Validate reports the first missing field, if any.
func (a Address) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"name", a.Name},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range fields {
		if f.value == "" {
			return &MissingAddressFieldError{Field: f.name}
		}
	}
	return nil
}

// LineItem is a single purchased product. Name and unit price are
// snapshotted at order time so later product edits do not rewrite
// historical orders.
type LineItem struct {
	ProductRef string          `json:"productRef"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// Order is a placed customer order with its monetary breakdown.
// Invariant: Total == max(0, Subtotal + Tax + Shipping - Discount).
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerID      string          `json:"customerId"`
	Items           []LineItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	CouponCode      string          `json:"couponCode,omitempty"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FormatOrderNumber renders a sequence value as the human-readable
// order identifier, e.g. 1001 -> "ORD-001001".
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}

// Repository provides persistence for orders.
//
// Create must run as a single transaction: it draws the next value from
// the order sequence, assigns o.OrderNumber and inserts the row. When
// o.CouponCode is set it also increments the coupon's usage count
// guarded by its usage limit, failing the whole transaction with
// coupon.ErrUsageLimitReached when the guard matches no row.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]Order, listing.Pagination, error)
}

// ListParams filters the order list endpoint. CustomerID scopes the
// result to one customer's orders; handlers set it for customer-role
// callers so one customer never sees another's orders.
type ListParams struct {
	listing.Params
	Status     Status
	CustomerID string
}
