package query_controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablepay/gateway/cmd/stablepayd/controllers"
)

func TestAddressController_Validate_ValidEVMAddress(t *testing.T) {
	ctrl := &AddressController{help: controllers.NewHelper()}

	body, _ := json.Marshal(map[string]string{
		"network": "arbitrum",
		"address": "0xA1B2C3D4E5F61234567890ABCDEF1234567890AB",
	})
	req := httptest.NewRequest(http.MethodPost, "/validate-address", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	ctrl.Validate(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp validateAddressResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "0xa1b2c3d4e5f61234567890abcdef1234567890ab", resp.Normalized)
}

func TestAddressController_Validate_InvalidAddress(t *testing.T) {
	ctrl := &AddressController{help: controllers.NewHelper()}

	body, _ := json.Marshal(map[string]string{"network": "tron", "address": "not-a-tron-address"})
	req := httptest.NewRequest(http.MethodPost, "/validate-address", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	ctrl.Validate(context.Background())(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp validateAddressResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Empty(t, resp.Normalized)
}

func TestAddressController_Validate_UnsupportedNetwork(t *testing.T) {
	ctrl := &AddressController{help: controllers.NewHelper()}

	body, _ := json.Marshal(map[string]string{"network": "solana", "address": "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/validate-address", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	ctrl.Validate(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddressController_Validate_MalformedBody(t *testing.T) {
	ctrl := &AddressController{help: controllers.NewHelper()}

	req := httptest.NewRequest(http.MethodPost, "/validate-address", bytes.NewReader([]byte("{bad")))
	rr := httptest.NewRecorder()

	ctrl.Validate(context.Background())(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
