package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/session"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

type testBackend struct {
	client *gateway.Client
	admin  *gateway.Client
	user   *session.Store
	adm    *session.Store
	srv    *httptest.Server
}

// newTestBackend serves mux under /api and returns user and admin clients
// sharing one memory store.
func newTestBackend(t *testing.T, mux *http.ServeMux) *testBackend {
	t.Helper()
	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	kv := storage.NewMemoryStore()
	user := session.NewUserStore(kv)
	adm := session.NewAdminStore(kv)

	client, err := gateway.New(srv.URL+"/api", user)
	require.NoError(t, err)
	admin, err := gateway.New(srv.URL+"/api", adm, gateway.WithRealm(gateway.RealmAdmin))
	require.NoError(t, err)

	return &testBackend{client: client, admin: admin, user: user, adm: adm, srv: srv}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Errorf("read body: %v", err)
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Errorf("decode body %q: %v", data, err)
	}
	return out
}
