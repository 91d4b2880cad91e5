// Package service wraps the backend REST endpoints the storefront uses.
// Every call goes through a gateway.Client so the 401 policy applies.
package service

import (
	"context"
	"net/url"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
)

// API is the subset of *gateway.Client the services call.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	PostMultipart(ctx context.Context, path string, form gateway.Multipart, out any) error
	BaseURL() *url.URL
}

var _ API = (*gateway.Client)(nil)
