package chainadapters

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

func alchemyTestServer(t *testing.T, currentBlockHex string, transfers []alchemyTransfer) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req["method"] {
		case "eth_blockNumber":
			_ = json.NewEncoder(w).Encode(alchemyBlockNumberResponse{Result: currentBlockHex})
		case "alchemy_getAssetTransfers":
			resp := alchemyTransfersResponse{}
			resp.Result.Transfers = transfers
			_ = json.NewEncoder(w).Encode(resp)
		default:
			t.Fatalf("unexpected method %v", req["method"])
		}
	}))
}

func testPayment(amount string) *entities.Payment {
	p := entities.NewPayment(uuid.New(), "user-1", uuid.New(), amount, entities.TokenUSDT, entities.NetworkArbitrum, "enc", "hmac", "0xreceiver")
	p.CreatedAt = time.Now().UTC().Add(-time.Hour)
	return p
}

func TestEVMAdapter_FindTransfer_MatchesSufficientlyConfirmedTransfer(t *testing.T) {
	server := alchemyTestServer(t, "0x64", []alchemyTransfer{{
		Hash:     "0xtxhash",
		BlockNum: "0x60",
		Value:    19.99,
		Metadata: struct {
			BlockTimestamp string `json:"blockTimestamp"`
		}{BlockTimestamp: time.Now().UTC().Format(time.RFC3339)},
	}})
	defer server.Close()

	adapter := NewEVMAdapter(entities.NetworkArbitrum, "test-key")
	adapter.baseURL = server.URL + "/"

	payment := testPayment("19.99")
	result, err := adapter.FindTransfer(t.Context(), payment, "0xreceiver", "0xsender")

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "0xtxhash", result.TxHash)
	assert.Equal(t, 5, result.Confirmations)
}

func TestEVMAdapter_FindTransfer_RejectsBelowToleranceAmount(t *testing.T) {
	server := alchemyTestServer(t, "0x64", []alchemyTransfer{{
		Hash:     "0xtxhash",
		BlockNum: "0x60",
		Value:    10.00,
		Metadata: struct {
			BlockTimestamp string `json:"blockTimestamp"`
		}{BlockTimestamp: time.Now().UTC().Format(time.RFC3339)},
	}})
	defer server.Close()

	adapter := NewEVMAdapter(entities.NetworkArbitrum, "test-key")
	adapter.baseURL = server.URL + "/"

	payment := testPayment("19.99")
	result, err := adapter.FindTransfer(t.Context(), payment, "0xreceiver", "0xsender")

	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestEVMAdapter_FindTransfer_RejectsTransferBeforePaymentCreated(t *testing.T) {
	server := alchemyTestServer(t, "0x64", []alchemyTransfer{{
		Hash:     "0xtxhash",
		BlockNum: "0x60",
		Value:    19.99,
		Metadata: struct {
			BlockTimestamp string `json:"blockTimestamp"`
		}{BlockTimestamp: time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)},
	}})
	defer server.Close()

	adapter := NewEVMAdapter(entities.NetworkArbitrum, "test-key")
	adapter.baseURL = server.URL + "/"

	payment := testPayment("19.99")
	result, err := adapter.FindTransfer(t.Context(), payment, "0xreceiver", "0xsender")

	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestEVMAdapter_FindTransfer_RejectsInsufficientConfirmations(t *testing.T) {
	server := alchemyTestServer(t, "0x64", []alchemyTransfer{{
		Hash:     "0xtxhash",
		BlockNum: "0x63",
		Value:    19.99,
		Metadata: struct {
			BlockTimestamp string `json:"blockTimestamp"`
		}{BlockTimestamp: time.Now().UTC().Format(time.RFC3339)},
	}})
	defer server.Close()

	adapter := NewEVMAdapter(entities.NetworkArbitrum, "test-key")
	adapter.baseURL = server.URL + "/"

	payment := testPayment("19.99")
	result, err := adapter.FindTransfer(t.Context(), payment, "0xreceiver", "0xsender")

	require.NoError(t, err)
	assert.False(t, result.Found, "confirmations = currentBlock(0x64) - txBlock(0x63) + 1 = 2, below MinConfirmations 3")
}

func TestEVMAdapter_Available_FalseWithoutAPIKey(t *testing.T) {
	adapter := NewEVMAdapter(entities.NetworkArbitrum, "")
	assert.False(t, adapter.Available())

	result, err := adapter.FindTransfer(t.Context(), testPayment("19.99"), "0xreceiver", "0xsender")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestHexToInt64(t *testing.T) {
	assert.Equal(t, int64(100), hexToInt64("0x64"))
	assert.Equal(t, int64(0), hexToInt64("0x0"))
}
