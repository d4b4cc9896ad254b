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
	"github.com/stablepay/gateway/pkg/infra/metrics"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"
)

// PaymentController handles the mutating payment endpoints: initiate,
// confirm-sent and cancel.
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

type initiatePaymentRequest struct {
	ExternalUserID string          `json:"externalUserId"`
	PlanID         string          `json:"planId"`
	Network        entities.Network `json:"network"`
	Token          entities.Token  `json:"token"`
	SenderAddress  string          `json:"senderAddress"`
}

// InitiatePayment handles POST /payments.
func (ctrl *PaymentController) InitiatePayment(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := middlewares.TenantIDFromContext(r.Context())
		if !ok {
			ctrl.help.HandleError(w, r, common.ErrUnauthorizedAPI, "missing tenant context")
			return
		}

		var req initiatePaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
			return
		}

		planID, err := uuid.Parse(req.PlanID)
		if err != nil {
			ctrl.help.WriteBadRequest(w, r, "INVALID_PLAN", "invalid planId")
			return
		}

		placement, err := ctrl.engine.InitiatePayment(r.Context(), in.InitiatePaymentInput{
			TenantID:       tenantID,
			ExternalUserID: req.ExternalUserID,
			PlanID:         planID,
			Network:        req.Network,
			Token:          req.Token,
			SenderAddress:  req.SenderAddress,
		})
		if ctrl.help.HandleError(w, r, err, "failed to initiate payment") {
			return
		}

		metrics.PaymentsCreated.WithLabelValues(string(req.Network), string(req.Token)).Inc()
		ctrl.help.WriteCreated(w, r, placement)
	}
}

// ConfirmPaymentSent handles POST /payments/:id/confirm.
func (ctrl *PaymentController) ConfirmPaymentSent(apiContext context.Context) http.HandlerFunc {
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

		if err := ctrl.engine.ConfirmPaymentSent(r.Context(), tenantID, paymentID); ctrl.help.HandleError(w, r, err, "failed to confirm payment sent") {
			return
		}

		ctrl.help.WriteOK(w, r, map[string]string{"status": string(entities.PaymentStatusAwaitingConfirmation)})
	}
}

// CancelPayment handles DELETE /payments/:id.
func (ctrl *PaymentController) CancelPayment(apiContext context.Context) http.HandlerFunc {
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

		if err := ctrl.engine.CancelPayment(r.Context(), tenantID, paymentID); ctrl.help.HandleError(w, r, err, "failed to cancel payment") {
			return
		}

		ctrl.help.WriteNoContent(w, r)
	}
}
