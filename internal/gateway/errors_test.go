package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessage(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"message key", `{"message":"Out of stock"}`, 400, "Out of stock"},
		{"error key", `{"error":"Invalid order detail"}`, 400, "Invalid order detail"},
		{"detail key", `{"detail":"Not found."}`, 404, "Not found."},
		{"field errors", `{"email":["user with this email already exists."]}`, 400, "user with this email already exists."},
		{"nested field errors", `{"items":[{"product":["Invalid pk."]}]}`, 400, "Invalid pk."},
		{"list body", `["first","second"]`, 400, "first. second"},
		{"plain text", "Bad Gateway from proxy", 502, "Bad Gateway from proxy"},
		{"empty body", "", 503, http.StatusText(503)},
		{"empty object", `{}`, 500, http.StatusText(500)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractMessage([]byte(tc.body), tc.status))
		})
	}
}

func TestClassify(t *testing.T) {
	apiErr := func(status int) *APIError {
		return newAPIError(http.MethodGet, "/x/", status, nil)
	}

	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"login required", fmt.Errorf("%w: %w", ErrLoginRequired, apiErr(401)), KindAuthentication},
		{"bad credentials", fmt.Errorf("%w: %w", ErrAuthentication, apiErr(401)), KindAuthentication},
		{"raw 401", apiErr(401), KindAuthorizationExpired},
		{"validation", apiErr(400), KindValidation},
		{"not found", fmt.Errorf("get product: %w", apiErr(404)), KindValidation},
		{"server", apiErr(500), KindServer},
		{"transport", &TransportError{Method: "GET", Path: "/x/", Err: errors.New("connection refused")}, KindTransport},
		{"canceled", context.Canceled, KindCanceled},
		{"other", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := newAPIError(http.MethodPost, "/orders/", 400, []byte(`{"message":"Cart is empty"}`))
	assert.Equal(t, "POST /orders/: status 400: Cart is empty", err.Error())
	assert.Equal(t, "validation", KindValidation.String())
}
