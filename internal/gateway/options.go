package gateway

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each outbound call. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithRealm(r Realm) Option {
	return func(c *Client) {
		c.realm = r
	}
}

func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithAuthPaths replaces the endpoints whose 401 is terminal.
func WithAuthPaths(paths ...string) Option {
	return func(c *Client) {
		c.authPaths = paths
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithRefreshDedup makes concurrent 401s that hold the same refresh token
// share one in-flight refresh call.
func WithRefreshDedup() Option {
	return func(c *Client) {
		c.dedupRefresh = true
	}
}

// WithCircuitBreaker opens after failures consecutive transport or 5xx
// failures and stays open for openFor before probing again.
func WithCircuitBreaker(failures uint32, openFor time.Duration) Option {
	return func(c *Client) {
		c.breakerFailures = failures
		c.breakerOpenFor = openFor
	}
}
