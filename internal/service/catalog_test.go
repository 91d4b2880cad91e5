package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

func TestProductService(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "100", q.Get("page_size"))
		if q.Get("min_price") != "" {
			assert.Equal(t, "10", q.Get("min_price"))
			assert.Equal(t, "99.5", q.Get("max_price"))
		}
		writeJSON(w, 200, map[string]any{"count": 1, "results": []map[string]any{
			{"id": 1, "product_name": "Shoe", "base_price": "59.99", "display_price": "49.99", "stock_quantity": 3},
		}})
	})
	mux.HandleFunc("/products/search/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shoe", r.URL.Query().Get("q"))
		writeJSON(w, 200, []map[string]any{{"id": 1, "product_name": "Shoe", "base_price": "59.99"}})
	})
	mux.HandleFunc("/products/7/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]any{"id": 7, "product_name": "Hat", "base_price": "10.00", "display_price": nil})
	})
	b := newTestBackend(t, mux)
	svc := NewProductService(b.client)
	ctx := context.Background()

	list, err := svc.List(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "49.99", list[0].UnitPrice().String())

	lo, hi := decimal.NewFromInt(10), decimal.RequireFromString("99.5")
	_, err = svc.List(ctx, ProductFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "  shoe ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	p, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "10", p.UnitPrice().String())
	assert.False(t, p.DisplayPrice.Valid)
}

func TestAddressService(t *testing.T) {
	var setDefault bool
	mux := http.NewServeMux()
	mux.HandleFunc("/addresses/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, 200, map[string]any{"results": []map[string]any{
				{"id": 1, "line1": "1 Main St", "city": "Pune", "is_default": false},
				{"id": 2, "line1": "2 Hill Rd", "city": "Pune", "is_default": true},
			}})
		case http.MethodPost:
			body := readJSON(t, r)
			_, hasID := body["id"]
			assert.False(t, hasID)
			body["id"] = 3
			writeJSON(w, 201, body)
		}
	})
	mux.HandleFunc("/addresses/2/set-default/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		setDefault = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/addresses/3/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			body := readJSON(t, r)
			body["id"] = 3
			writeJSON(w, 200, body)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	b := newTestBackend(t, mux)
	svc := NewAddressService(b.client)
	ctx := context.Background()

	def, err := svc.Default(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, int64(2), def.ID)

	created, err := svc.Create(ctx, domain.Address{ID: 99, Line1: "3 Lake View", City: "Goa", Pincode: "403001"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	updated, err := svc.Update(ctx, 3, domain.Address{Line1: "3 Lake View", City: "Panaji"})
	require.NoError(t, err)
	assert.Equal(t, "Panaji", updated.City)

	require.NoError(t, svc.SetDefault(ctx, 2))
	assert.True(t, setDefault)
	require.NoError(t, svc.Delete(ctx, 3))
}

func TestOrderService_ReturnAndExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/order-details/11/return/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, map[string]any{"return_reason": "Too small"}, readJSON(t, r))
		writeJSON(w, 200, map[string]string{"message": "Return initiated"})
	})
	mux.HandleFunc("/order-details/11/exchange/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, map[string]string{"error": "Item already exchanged"})
	})
	mux.HandleFunc("/orders/5/items/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, []map[string]any{{"id": 11, "order_quantity": 2, "product_price": "47.49", "discount_applied": "0"}})
	})
	b := newTestBackend(t, mux)
	svc := NewOrderService(b.client)
	ctx := context.Background()

	ack, err := svc.ReturnItem(ctx, 11, "Too small")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Return initiated"}`, string(ack))

	_, err = svc.ExchangeItem(ctx, 11)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Item already exchanged")

	items, err := svc.Items(ctx, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "94.98", items[0].Total().StringFixed(2))
}

func TestAdminService(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/analytics/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]any{"total_returns": 4, "top_returned_products": []map[string]any{{"product__product_name": "Shoe", "count": 3}}})
	})
	mux.HandleFunc("/admin/chats/", func(w http.ResponseWriter, r *http.Request) {
		sessions := []map[string]any{{"session_id": "a", "status": "completed", "message_count": 4}}
		if id := r.URL.Query().Get("session_id"); id != "" {
			sessions = []map[string]any{{"session_id": id, "messages": []map[string]any{{"turn_number": 1, "step": "greet", "user_text": "hi", "bot_text": "hello"}}}}
		}
		writeJSON(w, 200, map[string]any{"sessions": sessions})
	})
	b := newTestBackend(t, mux)
	ctx := context.Background()
	require.NoError(t, b.adm.Save(ctx, domain.TokenPair{AccessToken: "admin-token"}))
	require.NoError(t, b.user.Save(ctx, domain.TokenPair{AccessToken: "user-token"}))
	svc := NewAdminService(b.admin)

	a, err := svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, a.TotalReturns)
	assert.Equal(t, "Shoe", a.TopReturnedProducts[0].ProductName)

	chats, err := svc.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	one, err := svc.ChatSession(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "hello", one[0].Messages[0].BotText)
}
