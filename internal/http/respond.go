package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

// maxRequestBodySize caps JSON bodies; multipart uploads use maxUploadSize.
const (
	maxRequestBodySize = 1 << 20
	maxUploadSize      = 10 << 20
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type responder struct {
	logger *zap.Logger
}

func (rs responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (rs responder) respondError(w http.ResponseWriter, status int, code, message string) {
	rs.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps gateway and service errors onto BFF responses.
func (rs responder) handleServiceError(w http.ResponseWriter, r *http.Request, realm gateway.Realm, err error) {
	if errors.Is(err, gateway.ErrLoginRequired) || errors.Is(err, gateway.ErrAuthentication) {
		rs.respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    gateway.Message(err),
			Code:     "login_required",
			Redirect: realm.LoginPath(),
		})
		return
	}

	if service.IsValidation(err) || errors.Is(err, service.ErrEmptyVoiceReply) {
		rs.respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		rs.respondJSON(w, apiErr.StatusCode, ErrorResponse{
			Error:   apiErr.Message,
			Code:    codeForStatus(apiErr.StatusCode),
			Details: apiErr.Path,
		})
		return
	}

	switch gateway.Classify(err) {
	case gateway.KindTransport:
		rs.respondError(w, http.StatusBadGateway, "upstream_unavailable", gateway.Message(err))
	case gateway.KindCanceled:
		rs.respondError(w, http.StatusGatewayTimeout, "timeout", "request canceled or timed out")
	default:
		rs.logger.Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		rs.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "invalid_argument"
	case status == http.StatusForbidden:
		return "permission_denied"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "already_exists"
	case status == http.StatusTooManyRequests:
		return "rate_limit_exceeded"
	case status >= 500:
		return "upstream_error"
	default:
		return "request_failed"
	}
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
