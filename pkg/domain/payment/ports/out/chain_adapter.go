package out

import (
	"context"
	"time"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

// TransferResult is the outcome of a single findTransfer call. Found false
// means "nothing matched yet", not an error; adapter errors are reported
// through the error return of FindTransfer instead.
type TransferResult struct {
	Found         bool
	TxHash        string
	Confirmations int
	Amount        string
	Timestamp     time.Time
	BlockNumber   int64
}

// ChainAdapter looks for an on-chain transfer satisfying a pending payment.
// Both the EVM and Tron adapters implement this identically-shaped contract
// so the Monitor can dispatch on entities.Network without a type switch on
// adapter internals.
type ChainAdapter interface {
	FindTransfer(ctx context.Context, payment *entities.Payment, receiverAddress, senderAddress string) (TransferResult, error)
	// Available reports whether the adapter has the credentials it needs to
	// operate (e.g. ALCHEMY_API_KEY present). An unavailable adapter always
	// returns found=false without attempting a network call.
	Available() bool
}
