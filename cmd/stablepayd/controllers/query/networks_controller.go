package query_controllers

import (
	"context"
	"net/http"
	"sort"

	"github.com/golobby/container/v3"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

// NetworksController handles GET /networks.
type NetworksController struct {
	help *controllers.Helper
}

func NewNetworksController(c container.Container) *NetworksController {
	return &NetworksController{help: controllers.NewHelper()}
}

type networkResponse struct {
	Network          entities.Network `json:"network"`
	Tokens           []entities.Token `json:"tokens"`
	FeeHint          string           `json:"feeHint"`
	ConfirmationTime string           `json:"confirmationTime"`
	MinConfirmations int              `json:"minConfirmations"`
	Recommended      bool             `json:"recommended"`
}

func (ctrl *NetworksController) List(apiContext context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configs := entities.AllNetworkConfigs()
		response := make([]networkResponse, 0, len(configs))
		for _, c := range configs {
			tokens := make([]entities.Token, 0, len(c.TokenContracts))
			for t := range c.TokenContracts {
				tokens = append(tokens, t)
			}
			sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
			response = append(response, networkResponse{
				Network:          c.Network,
				Tokens:           tokens,
				FeeHint:          c.FeeHint,
				ConfirmationTime: c.ConfirmationTime,
				MinConfirmations: c.MinConfirmations,
				Recommended:      c.Recommended,
			})
		}
		ctrl.help.WriteOK(w, r, response)
	}
}
