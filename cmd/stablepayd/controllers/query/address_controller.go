package query_controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golobby/container/v3"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	"github.com/stablepay/gateway/pkg/domain/payment/services"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

// AddressController handles POST /validate-address. It performs no
// mutation, so it lives under the read-side controllers despite the verb.
type AddressController struct {
	help *controllers.Helper
}

func NewAddressController(c container.Container) *AddressController {
	return &AddressController{help: controllers.NewHelper()}
}

type validateAddressRequest struct {
	Network entities.Network `json:"network"`
	Address string           `json:"address"`
}

type validateAddressResponse struct {
	Valid     bool   `json:"valid"`
	Normalized string `json:"normalized,omitempty"`
}

func (ctrl *AddressController) Validate(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateAddressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ctrl.help.WriteBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
			return
		}

		if !entities.IsSupportedNetwork(req.Network) {
			ctrl.help.WriteBadRequest(w, r, "INVALID_NETWORK", "unsupported network")
			return
		}

		valid := services.ValidateAddress(req.Network, req.Address)
		resp := validateAddressResponse{Valid: valid}
		if valid {
			resp.Normalized = services.NormalizeAddress(req.Network, req.Address)
		}
		ctrl.help.WriteOK(w, r, resp)
	}
}
