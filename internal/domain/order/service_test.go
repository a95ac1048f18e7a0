package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/backoffice/internal/domain/catalog"
	"github.com/merchkit/backoffice/internal/domain/coupon"
	"github.com/merchkit/backoffice/internal/domain/settings"
	"github.com/merchkit/backoffice/internal/listing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// mockOrderRepo assigns order numbers from a mutex-guarded counter the
// way the SQL sequence row does, and simulates the usage-limit guard on
// coupon redemption.
type mockOrderRepo struct {
	mu           sync.Mutex
	seq          int64
	orders       map[string]*Order
	limitCodes   map[string]bool // codes whose usage limit is exhausted
	missingCodes map[string]bool // codes deleted after validation
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:       map[string]*Order{},
		limitCodes:   map[string]bool{},
		missingCodes: map[string]bool{},
	}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.CouponCode != "" && m.missingCodes[o.CouponCode] {
		return coupon.ErrNotFound
	}
	if o.CouponCode != "" && m.limitCodes[o.CouponCode] {
		return coupon.ErrUsageLimitReached
	}
	m.seq++
	o.OrderNumber = FormatOrderNumber(m.seq)
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepo) List(_ context.Context, _ ListParams) ([]Order, listing.Pagination, error) {
	return nil, listing.Pagination{}, nil
}

type mockProductRepo struct {
	products map[string]catalog.Product
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(context.Context, *catalog.Product) error { return nil }
func (m *mockProductRepo) Update(context.Context, *catalog.Product) error { return nil }
func (m *mockProductRepo) Delete(context.Context, string) error           { return nil }
func (m *mockProductRepo) Get(context.Context, string) (*catalog.Product, error) {
	return nil, catalog.ErrProductNotFound
}
func (m *mockProductRepo) List(context.Context, catalog.ProductListParams) ([]catalog.Product, listing.Pagination, error) {
	return nil, listing.Pagination{}, nil
}

type mockCouponRepo struct {
	coupons map[string]*coupon.Coupon
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := m.coupons[coupon.NormalizeCode(code)]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return c, nil
}

func (m *mockCouponRepo) Create(context.Context, *coupon.Coupon) error { return nil }
func (m *mockCouponRepo) Update(context.Context, *coupon.Coupon) error { return nil }
func (m *mockCouponRepo) Delete(context.Context, string) error         { return nil }
func (m *mockCouponRepo) List(context.Context, coupon.ListParams) ([]coupon.Coupon, listing.Pagination, error) {
	return nil, listing.Pagination{}, nil
}

type mockSettingsRepo struct {
	s settings.Settings
}

func (m *mockSettingsRepo) Get(context.Context) (*settings.Settings, error) {
	cp := m.s
	return &cp, nil
}

func (m *mockSettingsRepo) Put(_ context.Context, s *settings.Settings) (*settings.Settings, error) {
	m.s = *s
	return s, nil
}

func addr() Address {
	return Address{
		Name:       "Jo Doe",
		Address:    "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
		Phone:      "555-0100",
	}
}

func testService(orders *mockOrderRepo, coupons map[string]*coupon.Coupon, s settings.Settings) *Service {
	products := &mockProductRepo{products: map[string]catalog.Product{
		"p-tee": {ID: "p-tee", Name: "Classic Tee", Price: dec("20")},
		"p-cap": {ID: "p-cap", Name: "Logo Cap", Price: dec("5")},
	}}
	svc := NewService(orders, products, &mockCouponRepo{coupons: coupons}, &mockSettingsRepo{s: s})
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func baseRequest() CreateRequest {
	return CreateRequest{
		CustomerID:      "cust-1",
		Items:           []ItemRequest{{ProductRef: "p-tee", Quantity: 2}, {ProductRef: "p-cap", Quantity: 1}},
		ShippingAddress: addr(),
		BillingAddress:  addr(),
		PaymentMethod:   "card",
	}
}

func TestServiceCreateTotals(t *testing.T) {
	orders := newMockOrderRepo()
	svc := testService(orders, nil, settings.Settings{
		EnableTax:      true,
		TaxRate:        dec("8"),
		EnableShipping: true,
		ShippingFee:    dec("5"),
	})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	// 20*2 + 5*1 = 45; tax 8% = 3.60; shipping 5.
	assert.True(t, dec("45").Equal(o.Subtotal), "subtotal %s", o.Subtotal)
	assert.True(t, dec("3.60").Equal(o.Tax), "tax %s", o.Tax)
	assert.True(t, dec("5").Equal(o.Shipping), "shipping %s", o.Shipping)
	assert.True(t, dec("53.60").Equal(o.Total), "total %s", o.Total)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, "ORD-000001", o.OrderNumber)
	assert.NotEmpty(t, o.ID)

	// Snapshots carry name and unit price.
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Classic Tee", o.Items[0].Name)
	assert.True(t, dec("20").Equal(o.Items[0].UnitPrice))
}

func TestServiceCreateRoundsTaxToCents(t *testing.T) {
	// 45 * 4.444444444% = 1.9999999998, which rounds half-up to 2.00.
	svc := testService(newMockOrderRepo(), nil, settings.Settings{
		EnableTax:      true,
		TaxRate:        dec("4.444444444"),
		EnableShipping: true,
		ShippingFee:    dec("5"),
	})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(o.Tax), "tax %s", o.Tax)
	assert.True(t, dec("52").Equal(o.Total), "total %s", o.Total)
}

func TestServiceCreateTaxAndShippingDisabled(t *testing.T) {
	svc := testService(newMockOrderRepo(), nil, settings.Settings{
		TaxRate:     dec("8"),
		ShippingFee: dec("5"),
	})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, o.Tax.IsZero())
	assert.True(t, o.Shipping.IsZero())
	assert.True(t, dec("45").Equal(o.Total))
}

func TestServiceCreateWithCoupon(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupons := map[string]*coupon.Coupon{
		"SAVE15": {
			Code: "SAVE15", Kind: coupon.KindFixed, Value: dec("15"),
			Enabled: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
		},
	}
	svc := testService(newMockOrderRepo(), coupons, settings.Settings{})

	req := baseRequest()
	req.CouponCode = " save15 "

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "SAVE15", o.CouponCode)
	assert.True(t, dec("15").Equal(o.Discount))
	assert.True(t, dec("30").Equal(o.Total))
}

func TestServiceCreateTotalNeverNegative(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupons := map[string]*coupon.Coupon{
		"BIGFIX": {
			Code: "BIGFIX", Kind: coupon.KindFixed, Value: dec("500"),
			Enabled: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
		},
	}
	svc := testService(newMockOrderRepo(), coupons, settings.Settings{})

	req := baseRequest()
	req.CouponCode = "BIGFIX"

	o, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	// Fixed discounts cap at the subtotal, so the clamp holds.
	assert.False(t, o.Total.IsNegative())
	assert.True(t, o.Total.IsZero(), "total %s", o.Total)
}

func TestServiceCreateInvalidCouponFailsHard(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupons := map[string]*coupon.Coupon{
		"LATER": {
			Code: "LATER", Kind: coupon.KindPercentage, Value: dec("10"),
			Enabled: true, ValidFrom: now.Add(time.Hour), ValidUntil: now.Add(48 * time.Hour),
		},
	}

	tests := []struct {
		name string
		code string
		want error
	}{
		{"unknown code", "NOPE", coupon.ErrNotFound},
		{"scheduled coupon", "LATER", coupon.ErrNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService(newMockOrderRepo(), coupons, settings.Settings{})
			req := baseRequest()
			req.CouponCode = tt.code

			_, err := svc.Create(context.Background(), req)

			var invalid *InvalidCouponError
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestServiceCreateUsageLimitRace(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupons := map[string]*coupon.Coupon{
		"ONCE": {
			Code: "ONCE", Kind: coupon.KindFixed, Value: dec("5"),
			Enabled: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
		},
	}
	orders := newMockOrderRepo()
	// The read-side check passed, but the transactional guard loses the
	// race: creation must fail as an invalid coupon, not succeed
	// without the discount.
	orders.limitCodes["ONCE"] = true
	svc := testService(orders, coupons, settings.Settings{})

	req := baseRequest()
	req.CouponCode = "ONCE"

	_, err := svc.Create(context.Background(), req)
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, coupon.ErrUsageLimitReached)
	assert.Empty(t, orders.orders)
}

func TestServiceCreateCouponDeletedRace(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	coupons := map[string]*coupon.Coupon{
		"GONE": {
			Code: "GONE", Kind: coupon.KindFixed, Value: dec("5"),
			Enabled: true, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
		},
	}
	orders := newMockOrderRepo()
	// Deleted between the read-side check and the transaction. The
	// caller must see an invalid coupon carrying the not-found cause,
	// not a usage-limit message for a code that no longer exists.
	orders.missingCodes["GONE"] = true
	svc := testService(orders, coupons, settings.Settings{})

	req := baseRequest()
	req.CouponCode = "GONE"

	_, err := svc.Create(context.Background(), req)
	var invalid *InvalidCouponError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, coupon.ErrNotFound)
	assert.NotErrorIs(t, err, coupon.ErrUsageLimitReached)
	assert.Empty(t, orders.orders)
}

func TestServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		wantErr error
		wantAs  any
	}{
		{"no items", func(r *CreateRequest) { r.Items = nil }, ErrEmptyItems, nil},
		{"no customer", func(r *CreateRequest) { r.CustomerID = "" }, ErrMissingCustomer, nil},
		{"no payment method", func(r *CreateRequest) { r.PaymentMethod = "" }, ErrMissingPayment, nil},
		{
			"zero quantity",
			func(r *CreateRequest) { r.Items[0].Quantity = 0 },
			nil, &InvalidQuantityError{},
		},
		{
			"unknown product",
			func(r *CreateRequest) { r.Items[0].ProductRef = "p-ghost" },
			nil, &ProductNotFoundError{},
		},
		{
			"missing shipping city",
			func(r *CreateRequest) { r.ShippingAddress.City = "" },
			nil, &MissingAddressFieldError{},
		},
		{
			"missing billing phone",
			func(r *CreateRequest) { r.BillingAddress.Phone = "" },
			nil, &MissingAddressFieldError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testService(newMockOrderRepo(), nil, settings.Settings{})
			req := baseRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			switch tt.wantAs.(type) {
			case *InvalidQuantityError:
				var e *InvalidQuantityError
				assert.ErrorAs(t, err, &e)
			case *ProductNotFoundError:
				var e *ProductNotFoundError
				assert.ErrorAs(t, err, &e)
			case *MissingAddressFieldError:
				var e *MissingAddressFieldError
				assert.ErrorAs(t, err, &e)
			}
		})
	}
}

func TestServiceCreateAddressErrorNamesSide(t *testing.T) {
	svc := testService(newMockOrderRepo(), nil, settings.Settings{})
	req := baseRequest()
	req.BillingAddress.Country = ""

	_, err := svc.Create(context.Background(), req)
	var maf *MissingAddressFieldError
	require.ErrorAs(t, err, &maf)
	assert.Equal(t, "billing", maf.Which)
	assert.Equal(t, "country", maf.Field)
}

func TestServiceOrderNumbersUniqueUnderConcurrency(t *testing.T) {
	orders := newMockOrderRepo()
	svc := testService(orders, nil, settings.Settings{})

	const n = 100
	var wg sync.WaitGroup
	numbers := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := svc.Create(context.Background(), baseRequest())
			if assert.NoError(t, err) {
				numbers <- o.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	assert.True(t, seen["ORD-000001"])
	assert.True(t, seen[FormatOrderNumber(n)])
}

func TestServiceOrderNumberContinuesSequence(t *testing.T) {
	orders := newMockOrderRepo()
	orders.seq = 1000 // a thousand orders already placed
	svc := testService(orders, nil, settings.Settings{})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-001001", o.OrderNumber)
}

func TestServiceTransitionStatus(t *testing.T) {
	orders := newMockOrderRepo()
	svc := testService(orders, nil, settings.Settings{})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	got, err := svc.TransitionStatus(context.Background(), o.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	// Skipping straight to delivered is rejected and leaves the order
	// untouched.
	_, err = svc.TransitionStatus(context.Background(), o.ID, "delivered")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	stored, err := orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, stored.Status)

	_, err = svc.TransitionStatus(context.Background(), o.ID, "returned")
	var unknown *UnknownStatusError
	assert.ErrorAs(t, err, &unknown)

	_, err = svc.TransitionStatus(context.Background(), "missing", "processing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestServiceSetPaymentStatus(t *testing.T) {
	orders := newMockOrderRepo()
	svc := testService(orders, nil, settings.Settings{})

	o, err := svc.Create(context.Background(), baseRequest())
	require.NoError(t, err)

	got, err := svc.SetPaymentStatus(context.Background(), o.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)

	// Payment events arrive out of band, so any enum value may follow.
	got, err = svc.SetPaymentStatus(context.Background(), o.ID, "refunded")
	require.NoError(t, err)
	assert.Equal(t, PaymentRefunded, got.PaymentStatus)

	_, err = svc.SetPaymentStatus(context.Background(), o.ID, "chargeback")
	assert.Error(t, err)
}
