package cmd_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"

	"github.com/stablepay/gateway/pkg/domain/ofac/services"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

// OfacController handles the mutating sanctions-list endpoint: a forced
// refresh of the SDN feed.
type OfacController struct {
	service *services.Service
	help    *controllers.Helper
}

func NewOfacController(c container.Container) *OfacController {
	ctrl := &OfacController{help: controllers.NewHelper()}
	if err := c.Resolve(&ctrl.service); err != nil {
		slog.Error("failed to resolve ofac Service", "error", err)
	}
	return ctrl
}

// ForceUpdate handles POST /ofac/update.
func (ctrl *OfacController) ForceUpdate(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.service.Refresh(r.Context()); ctrl.help.HandleError(w, r, err, "failed to refresh ofac feed") {
			return
		}
		ctrl.help.WriteOK(w, r, map[string]string{"status": "refreshed"})
	}
}
