package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	common "github.com/stablepay/gateway/pkg/domain"
)

// errorResponseWriter tracks whether a handler already wrote a status code,
// so ErrorMiddleware never double-writes headers after the handler returns.
type errorResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (w *errorResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *errorResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.statusCode = http.StatusOK
		w.headerWritten = true
	}
	return w.ResponseWriter.Write(b)
}

// ErrorMiddleware is the single place that turns a domain/API error left on
// the request context (via common.SetError), a context cancellation, or an
// unexplained non-2xx status code into the { error, message, details }
// envelope from the HTTP surface design.
func ErrorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &errorResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		if err := common.GetError(r.Context()); err != nil {
			apiErr := common.ErrorFromString(err)
			if !rw.headerWritten {
				slog.ErrorContext(r.Context(), "request failed", "error", err, "status", apiErr.StatusCode)
				_ = common.WriteErrorResponse(rw, apiErr)
			}
			return
		}

		if ctxErr := r.Context().Err(); ctxErr != nil && !rw.headerWritten {
			var apiErr *common.APIError
			switch ctxErr {
			case context.DeadlineExceeded:
				apiErr = common.NewAPIError(http.StatusGatewayTimeout, "INTERNAL_ERROR", "request timed out")
			default:
				apiErr = common.NewAPIError(http.StatusRequestTimeout, "INTERNAL_ERROR", "request cancelled")
			}
			slog.WarnContext(r.Context(), "request context ended without response", "error", ctxErr)
			_ = common.WriteErrorResponse(rw, apiErr)
			return
		}

		if rw.headerWritten && rw.statusCode >= 400 {
			slog.WarnContext(r.Context(), "handler wrote error status without a context error", "status", rw.statusCode)
		}
	})
}
