package query_controllers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/golobby/container/v3"
	"github.com/gorilla/mux"

	"github.com/stablepay/gateway/pkg/domain/ofac/services"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

// OfacController handles the read-only sanctions-screening endpoints.
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

type ofacStatusResponse struct {
	LastUpdate        string         `json:"lastUpdate"`
	TotalAddresses    int            `json:"totalAddresses"`
	LastUpdateSuccess bool           `json:"lastUpdateSuccess"`
	AddressTypes      map[string]int `json:"addressTypes"`
}

// Status handles GET /ofac/status.
func (ctrl *OfacController) Status(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := ctrl.service.Status(r.Context())
		if ctrl.help.HandleError(w, r, err, "failed to get ofac status") {
			return
		}

		ctrl.help.WriteOK(w, r, ofacStatusResponse{
			LastUpdate:        status.LastUpdate.Format("2006-01-02T15:04:05Z"),
			TotalAddresses:    status.TotalAddresses,
			LastUpdateSuccess: status.LastUpdateSuccess,
			AddressTypes:      status.AddressTypeCounts,
		})
	}
}

type ofacCheckResponse struct {
	Address      string   `json:"address"`
	IsSanctioned bool     `json:"isSanctioned"`
	SDNNames     []string `json:"sdnNames,omitempty"`
	CheckedAt    string   `json:"checkedAt"`
}

// Check handles GET /ofac/check/:address.
func (ctrl *OfacController) Check(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := mux.Vars(r)["address"]
		isSanctioned, matches, checkedAt, err := ctrl.service.CheckAddressDetailed(r.Context(), address)
		if ctrl.help.HandleError(w, r, err, "failed to check address") {
			return
		}

		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.SDNName)
		}

		ctrl.help.WriteOK(w, r, ofacCheckResponse{
			Address:      address,
			IsSanctioned: isSanctioned,
			SDNNames:     names,
			CheckedAt:    checkedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
}
