package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegex_PairsAddressWithMostRecentMarker(t *testing.T) {
	text := strings.Join([]string{
		`<lastName>Smith</lastName>`,
		`Digital Currency Address - ETH`,
		`0xabc000000000000000000000000000000000dead`,
		`Digital Currency Address - TRX`,
		`T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb`,
	}, "\n")

	found, err := Regex(strings.NewReader(text))

	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "ethereum", found[0].Ticker)
	assert.Equal(t, "Smith", found[0].SDNName)
	assert.Equal(t, "tron", found[1].Ticker)
}

func TestRegex_IgnoresAddressesBeforeAnyMarker(t *testing.T) {
	text := "0xabc000000000000000000000000000000000dead\nDigital Currency Address - ETH"

	found, err := Regex(strings.NewReader(text))

	require.NoError(t, err)
	assert.Empty(t, found)
}
