package api

import (
	"errors"
	"net/http"

	"lakehouse/internal/domain"
	"lakehouse/internal/middleware"
)

// errorBody is the JSON envelope of every failed request.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFromError maps domain errors to an HTTP status and error code.
// Unclassified errors are internal.
func statusFromError(err error) (int, string) {
	var (
		validation  *domain.ValidationError
		notFound    *domain.NotFoundError
		strategy    *domain.StrategyNotFoundError
		unsupported *domain.UnsupportedTaskTypeError
		database    *domain.DatabaseError
		connection  *domain.ConnectionFailedError
		execution   *domain.ExecutionError
		denied      *domain.AccessDeniedError
		unauth      *domain.UnauthenticatedError
		conflict    *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.As(err, &strategy):
		return http.StatusNotFound, "STRATEGY_NOT_FOUND"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "UNSUPPORTED_TASK_TYPE"
	case errors.As(err, &connection):
		return http.StatusBadGateway, "CONNECTION_FAILED"
	case errors.As(err, &database):
		return http.StatusBadGateway, "DATABASE_ERROR"
	case errors.As(err, &execution):
		return http.StatusInternalServerError, "EXECUTION_ERROR"
	case errors.As(err, &unauth):
		code := unauth.Code
		if code == "" {
			code = "UNAUTHORIZED"
		}
		return http.StatusUnauthorized, code
	case errors.As(err, &denied):
		return http.StatusForbidden, "ACCESS_DENIED"
	case errors.As(err, &conflict):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeError logs err and writes the error envelope. Internal errors are
// reported without their details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFromError(err)
	msg := err.Error()
	if code == "INTERNAL_ERROR" {
		msg = "Internal server error"
	}

	attrs := []any{"error", err, "code", code, "path", r.URL.Path, "request_id", middleware.RequestIDFromContext(r.Context())}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Debug("request rejected", attrs...)
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// badRequest reports malformed input that never reached a service.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	h.writeError(w, r, domain.ErrValidation(format, args...))
}

