package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-DEEPDAS/HTT/internal/cart"
	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/events"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func seededCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore(cart.NewSnapshotPersister(storage.NewMemoryStore()))
	require.NoError(t, store.Init(context.Background()))

	ctx := context.Background()
	store.AddToCart(ctx, domain.Product{ID: 1, BasePrice: decimal.NewFromInt(100)}, 2)
	store.AddToCart(ctx, domain.Product{
		ID:           2,
		BasePrice:    decimal.RequireFromString("59.99"),
		DisplayPrice: decimal.NewNullDecimal(decimal.RequireFromString("49.99")),
	}, 3)
	return store
}

func TestCheckoutService_Quote(t *testing.T) {
	svc := NewCheckoutService(seededCart(t), nil, nil, nil, "", nil)

	cases := []struct {
		payment  domain.PaymentMethod
		shipping domain.ShippingMethod
		discount string
		fee      string
		total    string
	}{
		{"", "", "17.50", "0.00", "332.47"},
		{domain.PaymentPayPal, domain.ShippingExpress, "17.50", "99.00", "431.47"},
		{domain.PaymentCashOnDelivery, domain.ShippingNextDay, "0.00", "199.00", "548.97"},
	}
	for _, tc := range cases {
		q, err := svc.Quote(tc.payment, tc.shipping)
		require.NoError(t, err)
		assert.Equal(t, "349.97", q.Subtotal.StringFixed(2))
		assert.Equal(t, tc.discount, q.PrepaidDiscount.StringFixed(2), tc.payment)
		assert.Equal(t, tc.fee, q.Shipping.StringFixed(2))
		assert.Equal(t, tc.total, q.Total.StringFixed(2))
		assert.Equal(t, 5, q.ItemCount)
	}

	_, err := svc.Quote("Bitcoin", "")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	_, err = svc.Quote("", "Drone")
	assert.ErrorIs(t, err, ErrInvalidShippingMethod)
}

func TestBuildOrderRequest(t *testing.T) {
	lines := seededCart(t).Lines()

	prepaid := BuildOrderRequest(lines, 9, domain.PaymentCreditCard, domain.ShippingStandard)
	data, err := json.Marshal(prepaid)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"shipping_address": 9,
		"payment_method": "Credit Card",
		"shipping_method": "Standard",
		"items": [
			{"product": 1, "order_quantity": 2, "product_price": "95.00"},
			{"product": 2, "order_quantity": 3, "product_price": "47.49"}
		]
	}`, string(data))

	cod := BuildOrderRequest(lines, 9, domain.PaymentCashOnDelivery, domain.ShippingExpress)
	assert.Equal(t, "100.00", cod.Items[0].ProductPrice)
	assert.Equal(t, "49.99", cod.Items[1].ProductPrice)
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	var received map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		received = readJSON(t, r)
		writeJSON(w, 201, map[string]any{"id": 77, "payment_method": "Debit Card", "shipping_method": "Express"})
	})
	b := newTestBackend(t, mux)
	ctx := context.Background()
	require.NoError(t, b.user.SaveUser(ctx, domain.User{ID: 42}))

	store := seededCart(t)
	pub := &capturePublisher{}
	svc := NewCheckoutService(store, NewOrderService(b.client), b.user, pub, "client-a", nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }

	res, err := svc.PlaceOrder(ctx, CheckoutRequest{AddressID: 5, PaymentMethod: domain.PaymentDebitCard, ShippingMethod: domain.ShippingExpress})
	require.NoError(t, err)

	assert.Equal(t, int64(77), res.Order.ID)
	assert.Equal(t, "431.47", res.Quote.Total.StringFixed(2))
	assert.Equal(t, float64(5), received["shipping_address"])
	assert.Len(t, received["items"], 2)
	assert.True(t, store.IsEmpty())

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, events.TypeOrderPlaced, e.Type)
	assert.Equal(t, "client-a", e.Source)
	var placed events.OrderPlaced
	require.NoError(t, json.Unmarshal(e.Payload, &placed))
	assert.Equal(t, int64(42), placed.UserID)
	assert.Equal(t, int64(77), placed.OrderID)
	assert.Equal(t, 5, placed.ItemCount)
}

func TestCheckoutService_PlaceOrderKeepsLinesAddedInFlight(t *testing.T) {
	store := seededCart(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		store.AddToCart(r.Context(), domain.Product{ID: 9, BasePrice: decimal.NewFromInt(20)}, 1)
		store.AddToCart(r.Context(), domain.Product{ID: 1, BasePrice: decimal.NewFromInt(100)}, 1)
		writeJSON(w, 201, map[string]any{"id": 78})
	})
	b := newTestBackend(t, mux)
	svc := NewCheckoutService(store, NewOrderService(b.client), b.user, nil, "client-a", nil)

	res, err := svc.PlaceOrder(context.Background(), CheckoutRequest{AddressID: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Quote.ItemCount)

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(9), lines[1].ProductID)
}

func TestCheckoutService_PlaceOrderFailureKeepsCart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]string{"message": "Insufficient stock for Shoe"})
	})
	b := newTestBackend(t, mux)
	store := seededCart(t)
	pub := &capturePublisher{}
	svc := NewCheckoutService(store, NewOrderService(b.client), b.user, pub, "client-a", nil)

	_, err := svc.PlaceOrder(context.Background(), CheckoutRequest{AddressID: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock for Shoe")
	assert.Equal(t, 5, store.Count())
	assert.Empty(t, pub.events)
}

func TestCheckoutService_PlaceOrderValidation(t *testing.T) {
	empty := cart.NewStore(cart.NewSnapshotPersister(storage.NewMemoryStore()))
	svc := NewCheckoutService(empty, nil, nil, nil, "", nil)
	_, err := svc.PlaceOrder(context.Background(), CheckoutRequest{AddressID: 1})
	assert.ErrorIs(t, err, ErrEmptyCart)

	svc = NewCheckoutService(seededCart(t), nil, nil, nil, "", nil)
	_, err = svc.PlaceOrder(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.True(t, IsValidation(err))
}
