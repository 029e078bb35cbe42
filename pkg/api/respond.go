package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	herrors "github.com/hyperhive/hivegraph/pkg/errors"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code herrors.Code) int {
	switch {
	case code == herrors.ErrCodeNotFound,
		code == herrors.ErrCodeFeatureNotFound,
		code == herrors.ErrCodeCatalogNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == herrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case code == herrors.ErrCodeCycle:
		return http.StatusConflict
	case code == herrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError writes err as an [ErrorBody]. Errors without a code are
// reported as INTERNAL_ERROR without exposing their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := herrors.GetCode(err)
	msg := herrors.UserMessage(err)
	if code == "" {
		code = herrors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, statusFor(code), ErrorBody{
		Code:      string(code),
		Message:   msg,
		RequestID: RequestIDFrom(r.Context()),
	})
}

func errNotFound(r *http.Request) error {
	return herrors.New(herrors.ErrCodeNotFound, "no route for %s", r.URL.Path)
}

func errMethodNotAllowed(r *http.Request) error {
	return herrors.New(herrors.ErrCodeMethodNotAllowed, "method %s not allowed on %s", r.Method, r.URL.Path)
}

func errFeatureNotFound(id string) error {
	return herrors.New(herrors.ErrCodeFeatureNotFound, "feature %q not found", id)
}

// statusOf reads the status written through a chi wrapped writer. A
// handler that never called WriteHeader answered 200.
func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
