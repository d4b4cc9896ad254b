package query_controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

func TestNetworksController_List_ReturnsAllConfiguredNetworks(t *testing.T) {
	ctrl := &NetworksController{help: controllers.NewHelper()}

	req := httptest.NewRequest(http.MethodGet, "/networks", nil)
	rr := httptest.NewRecorder()

	ctrl.List(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []networkResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 3)

	byNetwork := map[string]networkResponse{}
	for _, r := range resp {
		byNetwork[string(r.Network)] = r
	}
	require.Contains(t, byNetwork, "tron")
	assert.Equal(t, 19, byNetwork["tron"].MinConfirmations)
	assert.ElementsMatch(t, []string{"USDT", "USDC"}, tokenStrings(byNetwork["tron"].Tokens))
}

func tokenStrings(tokens []entities.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}
