package query_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"

	common "github.com/stablepay/gateway/pkg/domain"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"
)

// SubscriptionController handles the read-only subscription endpoints.
type SubscriptionController struct {
	engine in.SubscriptionEngine
	help   *controllers.Helper
}

func NewSubscriptionController(c container.Container) *SubscriptionController {
	ctrl := &SubscriptionController{help: controllers.NewHelper()}
	if err := c.Resolve(&ctrl.engine); err != nil {
		slog.Error("failed to resolve SubscriptionEngine", "error", err)
	}
	return ctrl
}

func (ctrl *SubscriptionController) externalUserID(r *http.Request) string {
	return r.URL.Query().Get("externalUserId")
}

// Current handles GET /subscriptions/current.
func (ctrl *SubscriptionController) Current(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}
		externalUserID := ctrl.externalUserID(r)
		if externalUserID == "" {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "externalUserId is required")
			return
		}

		sub, err := ctrl.engine.CurrentSubscription(r.Context(), tenantID, externalUserID)
		if ctrl.help.HandleError(w, r, err, "failed to get current subscription") {
			return
		}

		ctrl.help.WriteOK(w, r, sub)
	}
}

// History handles GET /subscriptions/history.
func (ctrl *SubscriptionController) History(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}
		externalUserID := ctrl.externalUserID(r)
		if externalUserID == "" {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "externalUserId is required")
			return
		}

		history, err := ctrl.engine.History(r.Context(), tenantID, externalUserID)
		if ctrl.help.HandleError(w, r, err, "failed to get subscription history") {
			return
		}

		ctrl.help.WriteOK(w, r, history)
	}
}

// Active handles GET /subscriptions/active.
func (ctrl *SubscriptionController) Active(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}
		externalUserID := ctrl.externalUserID(r)
		if externalUserID == "" {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "externalUserId is required")
			return
		}

		active, err := ctrl.engine.IsActive(r.Context(), tenantID, externalUserID)
		if ctrl.help.HandleError(w, r, err, "failed to check subscription status") {
			return
		}

		ctrl.help.WriteOK(w, r, map[string]bool{"active": active})
	}
}
