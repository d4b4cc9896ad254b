package query_controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golobby/container/v3"

	"github.com/stablepay/gateway/pkg/app/monitor"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

// HealthController handles GET /health.
type HealthController struct {
	monitor *monitor.Monitor
	help    *controllers.Helper
}

func NewHealthController(c container.Container) *HealthController {
	ctrl := &HealthController{help: controllers.NewHelper()}
	if err := c.Resolve(&ctrl.monitor); err != nil {
		slog.Error("failed to resolve Monitor", "error", err)
	}
	return ctrl
}

type healthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	MonitorQueueSize int   `json:"monitorQueueSize"`
}

func (ctrl *HealthController) Health(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queueSize := 0
		if ctrl.monitor != nil {
			queueSize = ctrl.monitor.Size()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:           "ok",
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
			MonitorQueueSize: queueSize,
		})
	}
}
