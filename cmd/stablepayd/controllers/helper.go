// Package controllers holds the shared response/error helpers used by the
// command and query controllers. Route handlers live in the command and
// query subpackages, split along the same mutating/read-only line the
// routing package uses to decide where each endpoint is wired.
package controllers

import (
	"log/slog"
	"net/http"

	common "github.com/stablepay/gateway/pkg/domain"
)

// Helper centralizes the write-response and error-translation boilerplate
// every controller method needs.
type Helper struct{}

func NewHelper() *Helper { return &Helper{} }

// HandleError writes the mapped APIError for err and returns true, or does
// nothing and returns false when err is nil. Callers return immediately
// when this reports true.
func (h *Helper) HandleError(w http.ResponseWriter, r *http.Request, err error, logMessage string) bool {
	if err == nil {
		return false
	}
	slog.ErrorContext(r.Context(), logMessage, "error", err)
	apiErr := common.ErrorFromString(err)
	if writeErr := common.WriteErrorResponse(w, apiErr); writeErr != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", writeErr)
	}
	return true
}

func (h *Helper) WriteOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.write(w, r, data, http.StatusOK)
}

func (h *Helper) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	h.write(w, r, data, http.StatusCreated)
}

func (h *Helper) WriteNoContent(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, nil, http.StatusNoContent)
}

func (h *Helper) WriteBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	apiErr := common.NewAPIError(http.StatusBadRequest, code, message)
	if err := common.WriteErrorResponse(w, apiErr); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}

func (h *Helper) write(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {
	if err := common.WriteSuccessResponse(w, data, statusCode); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}
