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

const defaultTronGridBaseURL = "https://api.trongrid.io"
const tronTransferCap = 50

// TronAdapter finds TRC-20 stablecoin transfers via TronGrid's REST API.
type TronAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ out.ChainAdapter = (*TronAdapter)(nil)

func NewTronAdapter(apiKey, baseURL string) *TronAdapter {
	if baseURL == "" {
		baseURL = defaultTronGridBaseURL
	}
	return &TronAdapter{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     slog.Default().With("component", "tron_adapter"),
	}
}

// Available is always true: Tron monitoring works against the public
// TronGrid endpoint even without an API key, at a lower rate limit.
func (a *TronAdapter) Available() bool { return true }

type tronTrc20Response struct {
	Data []tronTrc20Transfer `json:"data"`
}

type tronTrc20Transfer struct {
	TransactionID string `json:"transaction_id"`
	TokenInfo     struct {
		Address  string `json:"address"`
		Decimals int    `json:"decimals"`
	} `json:"token_info"`
	From            string `json:"from"`
	Value           string `json:"value"`
	BlockTimestamp  int64  `json:"block_timestamp"`
}

func (a *TronAdapter) FindTransfer(ctx context.Context, payment *entities.Payment, receiverAddress, senderAddress string) (out.TransferResult, error) {
	cfg, ok := entities.GetNetworkConfig(entities.NetworkTron)
	if !ok {
		return out.TransferResult{}, fmt.Errorf("tron_adapter: unconfigured network")
	}
	contract, err := cfg.ContractFor(payment.Token)
	if err != nil {
		return out.TransferResult{}, err
	}

	url := fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20?only_to=true&contract_address=%s&min_timestamp=%d&limit=%d&order_by=block_timestamp,desc",
		a.baseURL, receiverAddress, contract, payment.CreatedAt.UnixMilli(), tronTransferCap)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return out.TransferResult{}, err
	}
	if a.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return out.TransferResult{}, fmt.Errorf("tron_adapter: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed tronTrc20Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return out.TransferResult{}, fmt.Errorf("tron_adapter: decode response: %w", err)
	}

	requiredAmount, _ := new(big.Float).SetString(payment.Amount)
	threshold := new(big.Float).Mul(requiredAmount, big.NewFloat(amountTolerance))
	scale := new(big.Float).SetFloat64(pow10(cfg.Decimals))

	for _, t := range parsed.Data {
		if !strings.EqualFold(t.From, senderAddress) {
			continue
		}
		rawValue, ok := new(big.Float).SetString(t.Value)
		if !ok {
			continue
		}
		scaled := new(big.Float).Quo(rawValue, scale)
		if scaled.Cmp(threshold) < 0 {
			continue
		}

		confirmations, err := a.confirmationsFor(ctx, t.TransactionID)
		if err != nil {
			a.logger.Warn("confirmation lookup failed", "tx_hash", t.TransactionID, "error", err)
			continue
		}
		if confirmations < cfg.MinConfirmations {
			continue
		}

		return out.TransferResult{
			Found:         true,
			TxHash:        t.TransactionID,
			Confirmations: confirmations,
			Amount:        scaled.String(),
			Timestamp:     time.UnixMilli(t.BlockTimestamp).UTC(),
		}, nil
	}

	return out.TransferResult{Found: false}, nil
}

type tronTxInfoResponse struct {
	BlockNumber int64 `json:"blockNumber"`
}

type tronNowBlockResponse struct {
	BlockHeader struct {
		RawData struct {
			Number int64 `json:"number"`
		} `json:"raw_data"`
	} `json:"block_header"`
}

// confirmationsFor calls the transaction-info endpoint for the tx's block
// number, then the current-block endpoint, and derives confirmation depth.
func (a *TronAdapter) confirmationsFor(ctx context.Context, txHash string) (int, error) {
	txInfoReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/wallet/gettransactioninfobyid?value="+txHash, nil)
	if err != nil {
		return 0, err
	}
	txInfoResp, err := a.httpClient.Do(txInfoReq)
	if err != nil {
		return 0, err
	}
	defer txInfoResp.Body.Close()
	var txInfo tronTxInfoResponse
	if err := json.NewDecoder(txInfoResp.Body).Decode(&txInfo); err != nil {
		return 0, err
	}

	blockReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/wallet/getnowblock", nil)
	if err != nil {
		return 0, err
	}
	blockResp, err := a.httpClient.Do(blockReq)
	if err != nil {
		return 0, err
	}
	defer blockResp.Body.Close()
	var nowBlock tronNowBlockResponse
	if err := json.NewDecoder(blockResp.Body).Decode(&nowBlock); err != nil {
		return 0, err
	}

	return int(nowBlock.BlockHeader.RawData.Number - txInfo.BlockNumber + 1), nil
}

func pow10(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
