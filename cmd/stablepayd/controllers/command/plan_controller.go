package cmd_controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	common "github.com/stablepay/gateway/pkg/domain"
	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	in "github.com/stablepay/gateway/pkg/domain/payment/ports/in"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"
)

// PlanController handles the mutating plan endpoints: create and patch.
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

type createPlanRequest struct {
	PlanKey     string         `json:"planKey"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       string         `json:"price"`
	Currency    entities.Token `json:"currency"`
	PeriodDays  *int           `json:"periodDays"`
	Features    []string       `json:"features"`
}

// CreatePlan handles POST /plans.
func (ctrl *PlanController) CreatePlan(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		var req createPlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
			return
		}

		plan, err := ctrl.engine.CreatePlan(r.Context(), tenantID, entities.PlanSpec{
			PlanKey:     req.PlanKey,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Currency:    req.Currency,
			PeriodDays:  req.PeriodDays,
			Features:    req.Features,
		})
		if ctrl.help.HandleError(w, r, err, "failed to create plan") {
			return
		}

		ctrl.help.WriteCreated(w, r, plan)
	}
}

type updatePlanRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *string  `json:"price"`
	Features    []string `json:"features"`
	Active      *bool    `json:"active"`
}

// UpdatePlan handles PATCH /plans/:id.
func (ctrl *PlanController) UpdatePlan(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		planID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid plan id")
			return
		}

		var req updatePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
			return
		}

		plan, err := ctrl.engine.UpdatePlan(r.Context(), tenantID, planID, in.PlanUpdate{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Features:    req.Features,
			Active:      req.Active,
		})
		if ctrl.help.HandleError(w, r, err, "failed to update plan") {
			return
		}

		ctrl.help.WriteOK(w, r, plan)
	}
}
