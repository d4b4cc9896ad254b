package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SanctionedAddress is one row of the OFAC SDN address list, normalized for
// exact-match lookup. The whole set is replaced atomically on each
// ingestion run (see ofac/services.Service.Refresh).
type SanctionedAddress struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	Address     string    `json:"address" bson:"address"`
	AddressLower string   `json:"address_lower" bson:"address_lower"`
	AddressType string    `json:"address_type" bson:"address_type"` // normalized chain ticker, e.g. "ethereum", "tron"
	SDNName     string    `json:"sdn_name" bson:"sdn_name"`
	SDNID       string    `json:"sdn_id" bson:"sdn_id"`
	Source      string    `json:"source" bson:"source"`
	LastSeenAt  time.Time `json:"last_seen_at" bson:"last_seen_at"`
}

func (s *SanctionedAddress) GetID() uuid.UUID { return s.ID }

func NewSanctionedAddress(address, addressType, sdnName, sdnID string, seenAt time.Time) *SanctionedAddress {
	return &SanctionedAddress{
		ID:           uuid.New(),
		Address:      address,
		AddressLower: strings.ToLower(strings.TrimSpace(address)),
		AddressType:  addressType,
		SDNName:      sdnName,
		SDNID:        sdnID,
		Source:       "OFAC_SDN",
		LastSeenAt:   seenAt,
	}
}

// NormalizeAddress applies the same normalization used to populate
// AddressLower, for use by query-side lookups.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
