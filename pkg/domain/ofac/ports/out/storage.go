package out

import (
	"context"

	"github.com/stablepay/gateway/pkg/domain/ofac/entities"
)

// Storage is the persistence contract for the OFAC screening data set.
type Storage interface {
	// CountSanctioned returns the number of rows currently stored.
	CountSanctioned(ctx context.Context) (int, error)
	// ReplaceAll atomically deletes every existing row and inserts addrs,
	// in batches, per the full-replace publication model.
	ReplaceAll(ctx context.Context, addrs []*entities.SanctionedAddress, batchSize int) error
	// FindByAddressLower returns every row matching the normalized address
	// exactly (cross-chain collisions return multiple rows).
	FindByAddressLower(ctx context.Context, addressLower string) ([]*entities.SanctionedAddress, error)
	// CountByType returns a count of addresses per AddressType, for status reporting.
	CountByType(ctx context.Context) (map[string]int, error)
	AppendUpdateLog(ctx context.Context, log *entities.UpdateLog) error
	LatestUpdateLog(ctx context.Context) (*entities.UpdateLog, error)
}
