package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthentication marks a 401 from a login/register endpoint. The
	// credential pair has been cleared.
	ErrAuthentication = errors.New("authentication failed")
	// ErrLoginRequired marks a 401 that could not be recovered by a token
	// refresh. The credential pair has been cleared.
	ErrLoginRequired = errors.New("login required")
	ErrRefreshFailed = errors.New("token refresh failed")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
	Message    string
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Body:       body,
		Message:    extractMessage(body, status),
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// TransportError wraps a failure to get any response at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindAuthentication: the session is gone and the user must log in again.
	KindAuthentication
	// KindAuthorizationExpired: a 401 that has not been through the refresh
	// policy yet, such as one seen by a caller using its own transport.
	KindAuthorizationExpired
	// KindValidation: a 4xx business or validation error to show verbatim.
	KindValidation
	KindServer
	KindTransport
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorizationExpired:
		return "authorization_expired"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrLoginRequired) {
		return KindAuthentication
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return KindAuthorizationExpired
		case apiErr.StatusCode >= 500:
			return KindServer
		}
		return KindValidation
	}
	return KindUnknown
}

// Message returns the text to show a user for err: the backend's message
// for API errors, the error string otherwise.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// extractMessage reads DRF-style error bodies: {"message": ...},
// {"error": ...}, {"detail": ...} or a map of field errors.
func extractMessage(body []byte, status int) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed
	}

	switch v := payload.(type) {
	case map[string]any:
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, flattenMessages(v[k])...)
		}
		if len(parts) > 0 {
			return strings.Join(parts, ". ")
		}
	case []any:
		if parts := flattenMessages(v); len(parts) > 0 {
			return strings.Join(parts, ". ")
		}
	case string:
		return v
	}
	return http.StatusText(status)
}

func flattenMessages(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flattenMessages(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, flattenMessages(t[k])...)
		}
		return out
	}
	return nil
}
