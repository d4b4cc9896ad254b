package query_controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/golobby/container/v3"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	common "github.com/stablepay/gateway/pkg/domain"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"
)

const historyDefaultLimit = 50

// PaymentController handles the read-only payment endpoints: status lookup
// and history.
type PaymentController struct {
	engine in.PaymentEngine
	help   *controllers.Helper
}

func NewPaymentController(c container.Container) *PaymentController {
	ctrl := &PaymentController{help: controllers.NewHelper()}
	if err := c.Resolve(&ctrl.engine); err != nil {
		slog.Error("failed to resolve PaymentEngine", "error", err)
	}
	return ctrl
}

// GetStatus handles GET /payments/:id/status.
func (ctrl *PaymentController) GetStatus(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		paymentID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid payment id")
			return
		}

		status, err := ctrl.engine.GetPaymentStatus(r.Context(), tenantID, paymentID)
		if ctrl.help.HandleError(w, r, err, "failed to get payment status") {
			return
		}

		ctrl.help.WriteOK(w, r, status)
	}
}

// GetHistory handles GET /payments/history. limit caps at 50 per the
// newest-first history contract.
func (ctrl *PaymentController) GetHistory(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		externalUserID := r.URL.Query().Get("externalUserId")
		if externalUserID == "" {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "externalUserId is required")
			return
		}

		limit := historyDefaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid limit")
				return
			}
			if parsed < limit {
				limit = parsed
			}
		}

		history, err := ctrl.engine.GetPaymentHistory(r.Context(), tenantID, externalUserID, limit)
		if ctrl.help.HandleError(w, r, err, "failed to get payment history") {
			return
		}

		ctrl.help.WriteOK(w, r, history)
	}
}
