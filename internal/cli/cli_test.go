package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-DEEPDAS/HTT/internal/app"
	"github.com/THE-DEEPDAS/HTT/internal/config"
	"github.com/THE-DEEPDAS/HTT/internal/output"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

type fakeAPI struct {
	orders    atomic.Int32
	lastOrder map[string]any
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access": "access-1", "refresh": "refresh-1",
			"user": map[string]any{"id": 7, "email": req["email"], "full_name": "Asha Rao"},
		})
	})
	mux.HandleFunc("GET /auth/user/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token not valid"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "asha@example.com", "full_name": "Asha Rao"})
	})
	mux.HandleFunc("GET /products/1/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 1, "product_name": "Desk Lamp", "base_price": "100.00", "stock_quantity": 5,
		})
	})
	mux.HandleFunc("GET /products/3/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 3, "product_name": "Kettle", "base_price": "20.00", "stock_quantity": 0,
		})
	})
	mux.HandleFunc("GET /products/500/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})
	mux.HandleFunc("GET /addresses/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 3, "line1": "1 Old Street", "city": "Pune", "pincode": "411001"},
			{"id": 8, "line1": "12 MG Road", "city": "Pune", "pincode": "411001", "is_default": true},
		})
	})
	mux.HandleFunc("POST /orders/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastOrder)
		f.orders.Add(1)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 77, "payment_method": "Credit Card", "shipping_method": "Standard"})
	})
	mux.HandleFunc("POST /voice/start/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": "s-1", "next_step": "ask_order", "message": "Which order?", "valid_answers": []string{"latest"},
		})
	})
	mux.HandleFunc("POST /voice/process/", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["session_id"] != "s-1" || req["current_step"] != "ask_order" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "unexpected step"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"text": "Return booked.", "next_step": "completed"})
	})

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", mux))
	return root
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type cliEnv struct {
	api *fakeAPI
	kv  storage.Store
	url string
}

// setupCLITest points the commands at a fake API and keeps local state in
// one memory store shared by every invocation in the test.
func setupCLITest(t *testing.T) *cliEnv {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	kv := storage.NewMemoryStore()
	prev := app.OpenStorage
	app.OpenStorage = func(context.Context, string) (storage.Store, error) { return kv, nil }
	t.Cleanup(func() {
		app.OpenStorage = prev
		cfg = nil
	})

	return &cliEnv{api: api, kv: kv, url: srv.URL + "/api"}
}

func (e *cliEnv) config() *config.Config {
	return &config.Config{
		API:     config.APIConfig{BaseURL: e.url},
		Storage: config.StorageConfig{URL: "memory://"},
		Kafka:   config.KafkaConfig{Topic: "storefront-orders"},
		Logging: config.LoggingConfig{Level: "error", Format: "console"},
		Output:  config.OutputConfig{Colors: false},
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *cliEnv) runWithInput(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = e.config()

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	code := Execute(context.Background())
	return code, stdout.String(), stderr.String()
}

func TestRootCmd_SubcommandsList(t *testing.T) {
	e := setupCLITest(t)

	code, out, _ := e.run(t, "--help")
	require.Equal(t, output.ExitSuccess, code)
	for _, name := range []string{"login", "products", "cart", "checkout", "orders", "addresses", "exchange", "voice", "admin"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	e := setupCLITest(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	code, out, _ := e.run(t, "version")
	require.Equal(t, output.ExitSuccess, code)
	assert.Contains(t, out, "storefront 1.2.3")
}

func TestRootCmd_InvalidColorMode(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "--color", "sometimes", "cart", "show")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "[ERROR]")
}

func TestLogin_ThenWhoami(t *testing.T) {
	e := setupCLITest(t)

	code, out, errOut := e.run(t, "login", "--email", "asha@example.com", "--password", "secret")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Logged in as Asha Rao")

	code, out, errOut = e.run(t, "whoami")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "asha@example.com")
}

func TestLogin_ReadsPasswordFromStdin(t *testing.T) {
	e := setupCLITest(t)

	code, out, errOut := e.runWithInput(t, "secret\n", "login", "--email", "asha@example.com")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Logged in")
}

func TestLogin_WrongPassword(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "login", "--email", "asha@example.com", "--password", "nope")
	assert.Equal(t, output.ExitAuthError, code)
	assert.Contains(t, errOut, "Invalid credentials")
	assert.Contains(t, errOut, "check your email and password")
}

func TestWhoami_RequiresLogin(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "whoami")
	assert.Equal(t, output.ExitAuthError, code)
	assert.Contains(t, errOut, "storefront login")
}

func TestAdminAnalytics_RequiresAdminLogin(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "login", "--email", "asha@example.com", "--password", "secret")
	require.Equal(t, output.ExitSuccess, code)

	code, _, errOut := e.run(t, "admin", "analytics")
	assert.Equal(t, output.ExitAuthError, code)
	assert.Contains(t, errOut, "storefront admin login")
}

func TestCart_AddShowAndClear(t *testing.T) {
	e := setupCLITest(t)

	code, out, errOut := e.run(t, "cart", "add", "1", "--qty", "2")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Desk Lamp")

	code, out, _ = e.run(t, "cart", "show")
	require.Equal(t, output.ExitSuccess, code)
	assert.Contains(t, out, "Desk Lamp")
	assert.Contains(t, out, "2 items, total 200.00")

	code, _, _ = e.run(t, "cart", "update", "1", "0")
	require.Equal(t, output.ExitSuccess, code)

	code, out, _ = e.run(t, "cart", "show")
	require.Equal(t, output.ExitSuccess, code)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCart_AddOutOfStock(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "cart", "add", "3")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "Kettle is out of stock")
}

func TestCart_AddRejectsBadID(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "cart", "add", "lamp")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "product id must be a positive integer")
}

func TestProducts_ServerErrorIsUpstream(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "products", "show", "500")
	assert.Equal(t, output.ExitUpstream, code)
	assert.Contains(t, errOut, "try again later")
}

func TestCheckout_Quote(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "cart", "add", "1", "--qty", "2")
	require.Equal(t, output.ExitSuccess, code)

	code, out, errOut := e.run(t, "checkout", "--quote", "--shipping", "Express")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "-10.00")
	assert.Contains(t, out, "99.00")
	assert.Contains(t, out, "289.00")
	assert.Zero(t, e.api.orders.Load())
}

func TestCheckout_UsesDefaultAddress(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "login", "--email", "asha@example.com", "--password", "secret")
	require.Equal(t, output.ExitSuccess, code)
	code, _, _ = e.run(t, "cart", "add", "1")
	require.Equal(t, output.ExitSuccess, code)

	code, out, errOut := e.run(t, "checkout", "--payment", "COD")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Order #77 placed")
	assert.Contains(t, out, "12 MG Road")

	require.Equal(t, int32(1), e.api.orders.Load())
	assert.EqualValues(t, 8, e.api.lastOrder["shipping_address"])
	items := e.api.lastOrder["items"].([]any)
	assert.Equal(t, "100.00", items[0].(map[string]any)["product_price"])

	code, out, _ = e.run(t, "cart", "show")
	require.Equal(t, output.ExitSuccess, code)
	assert.Contains(t, out, "Your cart is empty")
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := setupCLITest(t)

	code, _, errOut := e.run(t, "checkout")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "cart is empty")
}

func TestCheckout_InvalidPayment(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "cart", "add", "1")
	require.Equal(t, output.ExitSuccess, code)

	code, _, errOut := e.run(t, "checkout", "--quote", "--payment", "Cheque")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "invalid payment method")
}

func TestExchangePickup_RejectsUnknownGrade(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "login", "--email", "asha@example.com", "--password", "secret")
	require.Equal(t, output.ExitSuccess, code)

	code, _, errOut := e.run(t, "exchange", "pickup", "5", "--grade", "mint")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "--grade must be")
}

func TestVoice_ConversationSurvivesInvocations(t *testing.T) {
	e := setupCLITest(t)

	code, _, _ := e.run(t, "login", "--email", "asha@example.com", "--password", "secret")
	require.Equal(t, output.ExitSuccess, code)

	code, out, errOut := e.run(t, "voice", "start")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Which order?")
	assert.Contains(t, out, "latest")

	code, out, errOut = e.run(t, "voice", "say", "the", "latest", "one")
	require.Equal(t, output.ExitSuccess, code, errOut)
	assert.Contains(t, out, "Return booked.")
	assert.Contains(t, out, "conversation ended")

	_, err := e.kv.Get(context.Background(), voiceStateKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	code, _, errOut = e.run(t, "voice", "say", "hello")
	assert.Equal(t, output.ExitUsageError, code)
	assert.Contains(t, errOut, "voice start")
}

func TestDescribe_ValidationIsUsageError(t *testing.T) {
	got := describe(usageError("bad"))
	assert.Equal(t, output.ExitUsageError, got.ExitCode)
	assert.Equal(t, "bad", got.Summary)
}
