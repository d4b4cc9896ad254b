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

// PlanController handles GET /plans.
type PlanController struct {
	engine in.PaymentEngine
	help   *controllers.Helper
}

func NewPlanController(c container.Container) *PlanController {
	ctrl := &PlanController{help: controllers.NewHelper()}
	if err := c.Resolve(&ctrl.engine); err != nil {
		slog.Error("failed to resolve PaymentEngine", "error", err)
	}
	return ctrl
}

func (ctrl *PlanController) ListPlans(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		plans, err := ctrl.engine.ListPlans(r.Context(), tenantID)
		if ctrl.help.HandleError(w, r, err, "failed to list plans") {
			return
		}

		ctrl.help.WriteOK(w, r, plans)
	}
}
