// Package chainadapters implements the EVM and Tron ChainAdapter ports
// (pkg/domain/payment/ports/out.ChainAdapter) by polling third-party chain
// data APIs rather than running a full node.
package chainadapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	out "github.com/stablepay/gateway/pkg/domain/payment/ports/out"
)

const alchemyTransferCap = 50
const amountTolerance = 0.99

// EVMAdapter finds ERC-20 stablecoin transfers on Arbitrum/Ethereum via
// Alchemy's getAssetTransfers JSON-RPC method. One adapter instance is
// built per network (each carries its own RPC base URL).
type EVMAdapter struct {
	network    entities.Network
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ out.ChainAdapter = (*EVMAdapter)(nil)

// alchemyBaseURLs maps each EVM network to its Alchemy JSON-RPC host.
var alchemyBaseURLs = map[entities.Network]string{
	entities.NetworkArbitrum: "https://arb-mainnet.g.alchemy.com/v2/",
	entities.NetworkEthereum: "https://eth-mainnet.g.alchemy.com/v2/",
}

func NewEVMAdapter(network entities.Network, apiKey string) *EVMAdapter {
	return &EVMAdapter{
		network:    network,
		apiKey:     apiKey,
		baseURL:    alchemyBaseURLs[network],
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     slog.Default().With("component", "evm_adapter", "network", network),
	}
}

// Available reports whether the API key needed to query Alchemy is present.
func (a *EVMAdapter) Available() bool {
	return a.apiKey != ""
}

type alchemyTransfersRequest struct {
	JSONRPC string                   `json:"jsonrpc"`
	ID      int                      `json:"id"`
	Method  string                   `json:"method"`
	Params  []alchemyTransfersParams `json:"params"`
}

type alchemyTransfersParams struct {
	FromBlock         string   `json:"fromBlock"`
	ToBlock           string   `json:"toBlock"`
	FromAddress       string   `json:"fromAddress"`
	ToAddress         string   `json:"toAddress"`
	ContractAddresses []string `json:"contractAddresses"`
	Category          []string `json:"category"`
	Order             string   `json:"order"`
	MaxCount          string   `json:"maxCount"`
}

type alchemyTransfersResponse struct {
	Result struct {
		Transfers []alchemyTransfer `json:"transfers"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type alchemyTransfer struct {
	Hash        string  `json:"hash"`
	BlockNum    string  `json:"blockNum"`
	Value       float64 `json:"value"`
	Metadata    struct {
		BlockTimestamp string `json:"blockTimestamp"`
	} `json:"metadata"`
}

func (a *EVMAdapter) FindTransfer(ctx context.Context, payment *entities.Payment, receiverAddress, senderAddress string) (out.TransferResult, error) {
	if !a.Available() {
		return out.TransferResult{Found: false}, nil
	}

	cfg, ok := entities.GetNetworkConfig(a.network)
	if !ok {
		return out.TransferResult{}, fmt.Errorf("evm_adapter: unconfigured network %s", a.network)
	}
	contract, err := cfg.ContractFor(payment.Token)
	if err != nil {
		return out.TransferResult{}, err
	}

	reqBody := alchemyTransfersRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "alchemy_getAssetTransfers",
		Params: []alchemyTransfersParams{{
			FromBlock:         "0x0",
			ToBlock:           "latest",
			FromAddress:       senderAddress,
			ToAddress:         receiverAddress,
			ContractAddresses: []string{contract},
			Category:          []string{"erc20"},
			Order:             "desc",
			MaxCount:          fmt.Sprintf("0x%x", alchemyTransferCap),
		}},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return out.TransferResult{}, fmt.Errorf("evm_adapter: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.apiKey, strings.NewReader(string(raw)))
	if err != nil {
		return out.TransferResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return out.TransferResult{}, fmt.Errorf("evm_adapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed alchemyTransfersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return out.TransferResult{}, fmt.Errorf("evm_adapter: decode response: %w", err)
	}
	if parsed.Error != nil {
		return out.TransferResult{}, fmt.Errorf("evm_adapter: alchemy error: %s", parsed.Error.Message)
	}

	requiredAmount, _ := new(big.Float).SetString(payment.Amount)
	threshold := new(big.Float).Mul(requiredAmount, big.NewFloat(amountTolerance))

	currentBlock, err := a.currentBlockNumber(ctx)
	if err != nil {
		return out.TransferResult{}, err
	}

	for _, t := range parsed.Result.Transfers {
		ts, err := time.Parse(time.RFC3339, t.Metadata.BlockTimestamp)
		if err != nil || ts.Before(payment.CreatedAt) {
			continue
		}
		value := big.NewFloat(t.Value)
		if value.Cmp(threshold) < 0 {
			continue
		}
		txBlock := hexToInt64(t.BlockNum)
		confirmations := int(currentBlock - txBlock + 1)
		if confirmations < cfg.MinConfirmations {
			continue
		}
		a.logger.Info("transfer matched", "payment_id", payment.ID, "tx_hash", t.Hash, "confirmations", confirmations)
		return out.TransferResult{
			Found:         true,
			TxHash:        t.Hash,
			Confirmations: confirmations,
			Amount:        fmt.Sprintf("%v", t.Value),
			Timestamp:     ts,
			BlockNumber:   txBlock,
		}, nil
	}

	return out.TransferResult{Found: false}, nil
}

type alchemyBlockNumberResponse struct {
	Result string `json:"result"`
}

func (a *EVMAdapter) currentBlockNumber(ctx context.Context) (int64, error) {
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "eth_blockNumber",
		"params":  []any{},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return 0, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.apiKey, strings.NewReader(string(raw)))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("evm_adapter: block number request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed alchemyBlockNumberResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("evm_adapter: decode block number: %w", err)
	}
	return hexToInt64(parsed.Result), nil
}

func hexToInt64(hexStr string) int64 {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	n := new(big.Int)
	n.SetString(hexStr, 16)
	return n.Int64()
}
