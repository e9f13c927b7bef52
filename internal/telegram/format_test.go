package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adred-codev/alpha-radar/internal/model"
)

func TestAlertTextEnriched(t *testing.T) {
	token := model.TrendingToken{
		Contract:            "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		Chain:               model.ChainSolana,
		Mentions:            12,
		UniqueConversations: 4,
		Velocity:            3.0,
		Score:               87.0,
		Liquidity:           125000,
		Symbol:              "BONK",
	}

	want := "🚀 TRENDING $BONK\n" +
		"Chain: SOLANA\n" +
		"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263\n" +
		"Mentions: 12 | Unique chats: 4\n" +
		"Velocity: +3.00× | Score: 87.0\n" +
		"Liquidity: $125,000\n" +
		"https://dexscreener.com/solana/DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	assert.Equal(t, want, alertText(token))
}

func TestAlertTextBare(t *testing.T) {
	token := model.TrendingToken{
		Contract:            "0xdac17f958d2ee523a2206206994597c13d831ec7",
		Chain:               model.ChainEVM,
		Mentions:            3,
		UniqueConversations: 2,
		Velocity:            -0.5,
		Score:               9.5,
	}

	want := "🚀 TRENDING\n" +
		"Chain: EVM\n" +
		"0xdac17f958d2ee523a2206206994597c13d831ec7\n" +
		"Mentions: 3 | Unique chats: 2\n" +
		"Velocity: -0.50× | Score: 9.5\n" +
		"https://dexscreener.com/ethereum/0xdac17f958d2ee523a2206206994597c13d831ec7"
	assert.Equal(t, want, alertText(token))
}

func TestAlertPartsOmitUnknownLiquidity(t *testing.T) {
	enriched := model.TrendingToken{Contract: "x", Chain: model.ChainSolana, Liquidity: 5000}
	bare := model.TrendingToken{Contract: "x", Chain: model.ChainSolana}

	assert.Len(t, alertParts(enriched), 8)
	assert.Len(t, alertParts(bare), 7)
}

func TestDexscreenerURL(t *testing.T) {
	sol := model.TrendingToken{Contract: "abc", Chain: model.ChainSolana}
	evm := model.TrendingToken{Contract: "0xdef", Chain: model.ChainEVM}

	assert.Equal(t, "https://dexscreener.com/solana/abc", dexscreenerURL(sol))
	assert.Equal(t, "https://dexscreener.com/ethereum/0xdef", dexscreenerURL(evm))
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{value: 0, want: "0"},
		{value: 950, want: "950"},
		{value: 1000, want: "1,000"},
		{value: 125000, want: "125,000"},
		{value: 1234567, want: "1,234,567"},
		{value: 999999.6, want: "1,000,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUSD(tt.value), "formatUSD(%v)", tt.value)
	}
}
