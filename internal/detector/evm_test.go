package detector

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adred-codev/alpha-radar/internal/model"
)

func TestEVMDetectorExtractsAndNormalizes(t *testing.T) {
	d := NewEVMDetector()

	matches := d.Extract("New token: 0xdAC17F958D2ee523a2206206994597C13D831ec7", 1, 1)

	require.Len(t, matches, 1)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", matches[0].Contract)
	assert.Equal(t, model.ChainEVM, matches[0].Chain)
}

func TestEVMDetectorDeduplicatesCaseVariants(t *testing.T) {
	d := NewEVMDetector()

	// All three normalize to the same contract
	matches := d.Extract(
		"0xDAC17F958D2EE523A2206206994597C13D831EC7 "+
			"0xdac17f958d2ee523a2206206994597c13d831ec7 "+
			"0xdAC17F958D2ee523a2206206994597C13D831ec7", 1, 1)

	require.Len(t, matches, 1)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", matches[0].Contract)
}

func TestEVMDetectorIgnoresBlacklistedAddresses(t *testing.T) {
	d := NewEVMDetector()

	tests := []struct {
		name string
		addr string
	}{
		{"zero address", "0x0000000000000000000000000000000000000000"},
		{"max address", "0xffffffffffffffffffffffffffffffffffffffff"},
		{"burn address", "0x000000000000000000000000000000000000dead"},
		{"reverse burn address", "0xdead000000000000000000000000000000000000"},
		{"uppercase burn address", "0x000000000000000000000000000000000000DEAD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, d.Extract("sent to "+tt.addr, 1, 1))
		})
	}
}

func TestEVMDetectorRequiresExactLength(t *testing.T) {
	d := NewEVMDetector()

	// 16 hex digits
	assert.Empty(t, d.Extract("0x1234567890abcdef", 1, 1))
	// 39 hex digits
	assert.Empty(t, d.Extract("0xdac17f958d2ee523a2206206994597c13d831ec", 1, 1))
	// 41 hex digits: no boundary after the 40th, so no match at all
	assert.Empty(t, d.Extract("0xdac17f958d2ee523a2206206994597c13d831ec77", 1, 1))
}

func TestEVMDetectorExtractsMultipleAddresses(t *testing.T) {
	d := NewEVMDetector()

	matches := d.Extract(
		"0xdAC17F958D2ee523a2206206994597C13D831ec7 and "+
			"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 1, 1)

	require.Len(t, matches, 2)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", matches[0].Contract)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", matches[1].Contract)
}

func TestEVMDetectorOutputShape(t *testing.T) {
	d := NewEVMDetector()
	shape := regexp.MustCompile(`^0x[0-9a-f]{40}$`)

	matches := d.Extract(
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 0xDAC17F958D2EE523A2206206994597C13D831EC7 🚀", 1, 1)

	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Regexp(t, shape, m.Contract)
	}
}

func TestEVMDetectorEmptyMessage(t *testing.T) {
	assert.Empty(t, NewEVMDetector().Extract("", 1, 1))
}

func TestEVMDetectorChainName(t *testing.T) {
	assert.Equal(t, model.ChainEVM, NewEVMDetector().ChainName())
}
