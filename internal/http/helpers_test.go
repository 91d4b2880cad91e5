package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/THE-DEEPDAS/HTT/internal/cart"
	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/events"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
	"github.com/THE-DEEPDAS/HTT/internal/session"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

type testEnv struct {
	router  http.Handler
	cart    *cart.Store
	user    *session.Store
	admin   *session.Store
	backend *httptest.Server
	outbox  *events.Outbox
	kv      storage.Store
}

// newTestEnv wires the router to a fake storefront API that serves mux
// under /api.
func newTestEnv(t *testing.T, mux *http.ServeMux) *testEnv {
	t.Helper()
	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	backend := httptest.NewServer(root)
	t.Cleanup(backend.Close)

	kv := storage.NewMemoryStore()
	user := session.NewUserStore(kv)
	admin := session.NewAdminStore(kv)

	client, err := gateway.New(backend.URL+"/api", user)
	require.NoError(t, err)
	adminClient, err := gateway.New(backend.URL+"/api", admin, gateway.WithRealm(gateway.RealmAdmin))
	require.NoError(t, err)

	store := cart.NewStore(cart.NewSnapshotPersister(kv))
	require.NoError(t, store.Init(context.Background()))

	outbox := events.NewOutbox(kv)
	orders := service.NewOrderService(client)

	svc := Services{
		Cart:      store,
		Auth:      service.NewAuthService(client, adminClient, user, admin, nil),
		Products:  service.NewProductService(client),
		Addresses: service.NewAddressService(client),
		Orders:    orders,
		Checkout:  service.NewCheckoutService(store, orders, user, outbox, "test-client", nil),
		Exchange:  service.NewExchangeService(client),
		Voice:     service.NewVoiceService(client),
		Admin:     service.NewAdminService(adminClient),
	}

	return &testEnv{
		router:  NewRouter(svc, RouterConfig{RequestTimeout: 5 * time.Second}),
		cart:    store,
		user:    user,
		admin:   admin,
		backend: backend,
		outbox:  outbox,
		kv:      kv,
	}
}

func (e *testEnv) login(t *testing.T, userID int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.user.Save(ctx, domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	require.NoError(t, e.user.SaveUser(ctx, domain.User{ID: userID, Email: "asha@example.com"}))
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// catalogMux serves two in-stock products and one that is sold out.
func catalogMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/1/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "product_name": "Desk Lamp", "base_price": "100.00", "stock_quantity": 5,
		})
	})
	mux.HandleFunc("GET /products/2/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 2, "product_name": "Notebook", "base_price": "59.99", "display_price": "49.99", "stock_quantity": 40,
		})
	})
	mux.HandleFunc("GET /products/3/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 3, "product_name": "Kettle", "base_price": "20.00", "stock_quantity": 0,
		})
	})
	mux.HandleFunc("GET /products/404/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	return mux
}
