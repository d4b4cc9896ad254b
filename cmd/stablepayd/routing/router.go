// Package routing assembles the gorilla/mux router: every path rooted at
// /api, tenant resolution applied only to the tenant-scoped routes, and
// /metrics exposed alongside for Prometheus scraping.
package routing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cmd_controllers "github.com/stablepay/gateway/cmd/stablepayd/controllers/command"
	query_controllers "github.com/stablepay/gateway/cmd/stablepayd/controllers/query"
	"github.com/stablepay/gateway/cmd/stablepayd/middlewares"

	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

const (
	APIRoot = "/api"

	Health           = APIRoot + "/health"
	Networks         = APIRoot + "/networks"
	Plans            = APIRoot + "/plans"
	PlanDetail       = APIRoot + "/plans/{id}"
	Payments         = APIRoot + "/payments"
	PaymentConfirm   = APIRoot + "/payments/{id}/confirm"
	PaymentStatus    = APIRoot + "/payments/{id}/status"
	PaymentHistory   = APIRoot + "/payments/history"
	PaymentDetail    = APIRoot + "/payments/{id}"
	ValidateAddress  = APIRoot + "/validate-address"
	SubscriptionNow  = APIRoot + "/subscriptions/current"
	SubscriptionLog  = APIRoot + "/subscriptions/history"
	SubscriptionIsOn = APIRoot + "/subscriptions/active"
	OfacStatus       = APIRoot + "/ofac/status"
	OfacCheck        = APIRoot + "/ofac/check/{address}"
	OfacUpdate       = APIRoot + "/ofac/update"
	Metrics          = "/metrics"
)

// NewRouter wires every controller the ContainerBuilder produced into the
// HTTP surface. Handlers take apiContext (the process root context) purely
// for parity with the wider codebase's ctx-returning-handler idiom; request
// cancellation itself is always r.Context().
func NewRouter(ctx context.Context, c container.Container) http.Handler {
	var storage out.Storage
	if err := c.Resolve(&storage); err != nil {
		slog.ErrorContext(ctx, "routing: failed to resolve Storage", "error", err)
	}
	tenantMiddleware := middlewares.NewTenantMiddleware(storage)
	corsMiddleware := middlewares.NewCORSMiddleware()

	healthController := query_controllers.NewHealthController(c)
	networksController := query_controllers.NewNetworksController(c)
	addressController := query_controllers.NewAddressController(c)

	planCommandController := cmd_controllers.NewPlanController(c)
	planQueryController := query_controllers.NewPlanController(c)

	paymentCommandController := cmd_controllers.NewPaymentController(c)
	paymentQueryController := query_controllers.NewPaymentController(c)

	subscriptionQueryController := query_controllers.NewSubscriptionController(c)

	ofacCommandController := cmd_controllers.NewOfacController(c)
	ofacQueryController := query_controllers.NewOfacController(c)

	r := mux.NewRouter()
	r.Use(middlewares.ErrorMiddleware)
	r.Use(corsMiddleware.Handler)

	tenantScoped := func(h http.HandlerFunc) http.Handler {
		return tenantMiddleware.Handler(h)
	}

	// public
	r.HandleFunc(Health, healthController.Health(ctx)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc(Networks, networksController.List(ctx)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc(ValidateAddress, addressController.Validate(ctx)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc(OfacStatus, ofacQueryController.Status(ctx)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc(OfacCheck, ofacQueryController.Check(ctx)).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(OfacUpdate, tenantScoped(ofacCommandController.ForceUpdate(ctx))).Methods(http.MethodPost, http.MethodOptions)

	// plans
	r.Handle(Plans, tenantScoped(planQueryController.ListPlans(ctx))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(Plans, tenantScoped(planCommandController.CreatePlan(ctx))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle(PlanDetail, tenantScoped(planCommandController.UpdatePlan(ctx))).Methods(http.MethodPatch, http.MethodOptions)

	// payments
	r.Handle(Payments, tenantScoped(paymentCommandController.InitiatePayment(ctx))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle(PaymentConfirm, tenantScoped(paymentCommandController.ConfirmPaymentSent(ctx))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle(PaymentStatus, tenantScoped(paymentQueryController.GetStatus(ctx))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(PaymentHistory, tenantScoped(paymentQueryController.GetHistory(ctx))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(PaymentDetail, tenantScoped(paymentCommandController.CancelPayment(ctx))).Methods(http.MethodDelete, http.MethodOptions)

	// subscriptions
	r.Handle(SubscriptionNow, tenantScoped(subscriptionQueryController.Current(ctx))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(SubscriptionLog, tenantScoped(subscriptionQueryController.History(ctx))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle(SubscriptionIsOn, tenantScoped(subscriptionQueryController.Active(ctx))).Methods(http.MethodGet, http.MethodOptions)

	r.Handle(Metrics, promhttp.Handler())

	return r
}
