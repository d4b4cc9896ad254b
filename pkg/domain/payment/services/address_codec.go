package services

import (
	"regexp"
	"strings"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
)

var (
	evmAddressRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronAddressRe = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
)

// ValidateAddress reports whether addr is well-formed for network.
func ValidateAddress(network entities.Network, addr string) bool {
	switch network {
	case entities.NetworkArbitrum, entities.NetworkEthereum:
		return evmAddressRe.MatchString(addr)
	case entities.NetworkTron:
		return tronAddressRe.MatchString(addr)
	default:
		return false
	}
}

// NormalizeAddress applies the per-chain canonical form: EVM addresses are
// lower-cased, Tron (base58) addresses are left unchanged.
func NormalizeAddress(network entities.Network, addr string) string {
	switch network {
	case entities.NetworkArbitrum, entities.NetworkEthereum:
		return strings.ToLower(addr)
	default:
		return addr
	}
}
