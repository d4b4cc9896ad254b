package services

import (
	"testing"

	"github.com/stablepay/gateway/pkg/domain/payment/entities"
	"github.com/stretchr/testify/assert"
)

func TestValidateAddress_EVM(t *testing.T) {
	valid := "0xa1b2c3d4e5f61234567890abcdef1234567890ab"
	assert.True(t, ValidateAddress(entities.NetworkArbitrum, valid))
	assert.True(t, ValidateAddress(entities.NetworkEthereum, valid))
	assert.False(t, ValidateAddress(entities.NetworkArbitrum, "0xshort"))
	assert.False(t, ValidateAddress(entities.NetworkArbitrum, "not-an-address"))
}

func TestValidateAddress_Tron(t *testing.T) {
	valid := "T" + "9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb"
	assert.True(t, ValidateAddress(entities.NetworkTron, valid))
	assert.False(t, ValidateAddress(entities.NetworkTron, "0xabc"))
	assert.False(t, ValidateAddress(entities.NetworkTron, "Tshort"))
}

func TestValidateAddress_UnknownNetwork(t *testing.T) {
	assert.False(t, ValidateAddress(entities.Network("unknown"), "anything"))
}

func TestNormalizeAddress_EVMLowercases(t *testing.T) {
	mixed := "0xA1B2C3D4E5F61234567890ABCDEF1234567890AB"
	assert.Equal(t, "0xa1b2c3d4e5f61234567890abcdef1234567890ab", NormalizeAddress(entities.NetworkEthereum, mixed))
}

func TestNormalizeAddress_TronUnchanged(t *testing.T) {
	addr := "T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb"
	assert.Equal(t, addr, NormalizeAddress(entities.NetworkTron, addr))
}
