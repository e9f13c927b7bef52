package telegram

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// alertHeader is the first line of every alert
func alertHeader(t model.TrendingToken) string {
	if t.Symbol != "" {
		return "🚀 TRENDING $" + t.Symbol
	}
	return "🚀 TRENDING"
}

func chainLabel(c model.Chain) string {
	return strings.ToUpper(string(c))
}

// dexscreenerURL links the alert to the token's pair page. Dexscreener
// uses "ethereum" as the EVM path segment.
func dexscreenerURL(t model.TrendingToken) string {
	path := "ethereum"
	if t.Chain == model.ChainSolana {
		path = "solana"
	}
	return "https://dexscreener.com/" + path + "/" + t.Contract
}

// formatUSD renders a dollar amount with thousands separators and no
// cents
func formatUSD(v float64) string {
	digits := strconv.FormatInt(int64(math.Round(v)), 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// alertText is the plain rendition, used for dry-run logs and send
// failure reports
func alertText(t model.TrendingToken) string {
	var b strings.Builder
	b.WriteString(alertHeader(t))
	b.WriteString("\nChain: " + chainLabel(t.Chain))
	b.WriteString("\n" + t.Contract)
	fmt.Fprintf(&b, "\nMentions: %d | Unique chats: %d", t.Mentions, t.UniqueConversations)
	fmt.Fprintf(&b, "\nVelocity: %+.2f× | Score: %.1f", t.Velocity, t.Score)
	if t.Liquidity > 0 {
		b.WriteString("\nLiquidity: $" + formatUSD(t.Liquidity))
	}
	b.WriteString("\n" + dexscreenerURL(t))
	return b.String()
}

// alertParts is the styled rendition sent to Saved Messages. The
// contract is monospaced so one tap copies it.
func alertParts(t model.TrendingToken) []message.StyledTextOption {
	parts := []message.StyledTextOption{
		styling.Bold(alertHeader(t)),
		styling.Plain("\nChain: " + chainLabel(t.Chain)),
		styling.Plain("\n"),
		styling.Code(t.Contract),
		styling.Plain(fmt.Sprintf("\nMentions: %d | Unique chats: %d", t.Mentions, t.UniqueConversations)),
		styling.Plain(fmt.Sprintf("\nVelocity: %+.2f× | Score: %.1f", t.Velocity, t.Score)),
	}
	if t.Liquidity > 0 {
		parts = append(parts, styling.Plain("\nLiquidity: $"+formatUSD(t.Liquidity)))
	}
	parts = append(parts, styling.Plain("\n"+dexscreenerURL(t)))
	return parts
}
