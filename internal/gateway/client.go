// Package gateway is the single path every backend call takes. It attaches
// the realm's bearer token and applies the 401 policy: terminal logout on
// auth endpoints, otherwise one refresh and one retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

const (
	DefaultRefreshPath = "/auth/token/refresh/"
	RequestIDHeader    = "X-Request-ID"

	// defaultRefreshTimeout bounds a refresh when the client has no timeout.
	defaultRefreshTimeout = 30 * time.Second
)

// DefaultAuthPaths are the endpoints where a 401 means bad credentials
// rather than an expired token.
var DefaultAuthPaths = []string{"/auth/login/", "/auth/register/", "/auth/admin-login/"}

var errUpstreamFailure = errors.New("upstream server error")

// CredentialStore holds one realm's token pair.
type CredentialStore interface {
	Load(ctx context.Context) (domain.TokenPair, error)
	Save(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}

type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	timeout     time.Duration
	creds       CredentialStore
	realm       Realm
	navigator   Navigator
	logger      *zap.Logger
	authPaths   []string
	refreshPath string

	dedupRefresh bool
	refreshGroup singleflight.Group

	breakerFailures uint32
	breakerOpenFor  time.Duration
	breaker         *gobreaker.CircuitBreaker[*http.Response]
}

func New(baseURL string, creds CredentialStore, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if creds == nil {
		return nil, errors.New("credential store is required")
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:     u,
		creds:       creds,
		realm:       RealmUser,
		navigator:   nopNavigator{},
		authPaths:   DefaultAuthPaths,
		refreshPath: DefaultRefreshPath,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = logger.OrNop(c.logger).With(zap.String("realm", string(c.realm)))
	if c.navigator == nil {
		c.navigator = nopNavigator{}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if c.breakerFailures > 0 {
		c.breaker = c.newBreaker()
	}
	return c, nil
}

func (c *Client) Realm() Realm {
	return c.realm
}

func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form Multipart, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode multipart %s: %w", path, err)
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, RawBody: body, ContentType: contentType}, out)
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	a, err := c.newAttempt(req)
	if err != nil {
		return err
	}
	return c.execute(ctx, a, out)
}

func (c *Client) execute(ctx context.Context, a attempt, out any) error {
	pair, err := c.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	status, body, err := c.send(ctx, a, pair.AccessToken)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusUnauthorized:
		return c.handleUnauthorized(ctx, a, newAPIError(a.method, a.path, status, body), out)
	case status < 200 || status > 299:
		return newAPIError(a.method, a.path, status, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", a.method, a.path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context, a attempt, apiErr *APIError, out any) error {
	log := logger.WithTrace(ctx, c.logger).With(zap.String("method", a.method), zap.String("path", a.path))

	if c.isAuthPath(a.path) {
		log.Info("credentials rejected by auth endpoint")
		c.logout(ctx)
		return fmt.Errorf("%w: %w", ErrAuthentication, apiErr)
	}

	pair, err := c.creds.Load(ctx)
	if err != nil {
		log.Warn("failed to load credentials after 401", zap.Error(err))
	}
	if err != nil || pair.RefreshToken == "" || a.retried {
		log.Info("session expired", zap.Bool("retried", a.retried))
		c.logout(ctx)
		return fmt.Errorf("%w: %w", ErrLoginRequired, apiErr)
	}

	if _, err := c.refresh(ctx, pair.RefreshToken); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Info("token refresh failed", zap.Error(err))
		c.logout(ctx)
		return fmt.Errorf("%w: %w", ErrLoginRequired, err)
	}

	log.Debug("token refreshed, retrying request")
	a.retried = true
	return c.execute(ctx, a, out)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if !c.dedupRefresh {
		return c.doRefresh(ctx, refreshToken)
	}
	v, err, _ := c.refreshGroup.Do(refreshToken, func() (any, error) {
		return c.doRefresh(ctx, refreshToken)
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return v.(domain.TokenPair), nil
}

// doRefresh exchanges the refresh token for a new access token. The call
// carries no bearer header and never goes through the 401 policy itself.
// It outlives the caller's context: once the backend rotates the refresh
// token the new pair must be stored.
func (c *Client) doRefresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	ctx = context.WithoutCancel(ctx)
	if c.timeout <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultRefreshTimeout)
		defer cancel()
	}

	a, err := c.newAttempt(Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Body:   map[string]string{"refresh": refreshToken},
	})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	status, body, err := c.send(ctx, a, "")
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if status < 200 || status > 299 {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, newAPIError(a.method, a.path, status, body))
	}

	var pair domain.TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: decode response: %w", ErrRefreshFailed, err)
	}
	if pair.AccessToken == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: response has no access token", ErrRefreshFailed)
	}
	if err := c.creds.Save(ctx, pair); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return pair, nil
}

func (c *Client) logout(ctx context.Context) {
	if err := c.creds.Clear(ctx); err != nil {
		logger.WithTrace(ctx, c.logger).Warn("failed to clear credentials", zap.Error(err))
	}
	c.navigator.NavigateToLogin(ctx, c.realm)
}

func (c *Client) isAuthPath(path string) bool {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	for _, ap := range c.authPaths {
		if p == ap {
			return true
		}
	}
	return false
}

// send performs one HTTP exchange and returns the status and full body. A
// caller context that is done by the time the response arrives wins over
// the response.
func (c *Client) send(ctx context.Context, a attempt, accessToken string) (int, []byte, error) {
	sendCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if a.body != nil {
		body = bytes.NewReader(a.body)
	}
	req, err := http.NewRequestWithContext(sendCtx, a.method, a.url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s request: %w", a.method, a.path, err)
	}
	for k, vs := range a.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if a.contentType != "" {
		req.Header.Set("Content-Type", a.contentType)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		return 0, nil, &TransportError{Method: a.method, Path: a.path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, nil, ctxErr
	}
	if err != nil {
		return 0, nil, &TransportError{Method: a.method, Path: a.path, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, data, nil
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errUpstreamFailure
		}
		return resp, nil
	})
	if errors.Is(err, errUpstreamFailure) {
		return resp, nil
	}
	return resp, err
}

func (c *Client) newBreaker() *gobreaker.CircuitBreaker[*http.Response] {
	threshold := c.breakerFailures
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "storefront-api-" + string(c.realm),
		MaxRequests: 1,
		Timeout:     c.breakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}
