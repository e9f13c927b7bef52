package detector

import (
	"regexp"
	"time"
	"unicode"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// Base58 alphabet (no 0, O, I, l), 32-44 chars, word-bounded
var solanaPattern = regexp.MustCompile(`\b([1-9A-HJ-NP-Za-km-z]{32,44})\b`)

// Words that fit the Base58 alphabet and show up constantly in crypto chat.
// Checked before the case heuristic so additions here always win.
var solanaFalsePositives = map[string]struct{}{
	"Bitcoin":   {},
	"bitcoin":   {},
	"Ethereum":  {},
	"ethereum":  {},
	"Solana":    {},
	"solana":    {},
	"Polygon":   {},
	"polygon":   {},
	"Avalanche": {},
	"avalanche": {},
	"Cardano":   {},
	"cardano":   {},
	"Polkadot":  {},
	"polkadot":  {},
	"Chainlink": {},
	"chainlink": {},
	"Uniswap":   {},
	"uniswap":   {},
	"Airdrop":   {},
	"airdrop":   {},
	"Binance":   {},
	"binance":   {},
	"Coinbase":  {},
	"coinbase":  {},
	"Bullish":   {},
	"bullish":   {},
	"Bearish":   {},
	"bearish":   {},
	"Moonshot":  {},
	"moonshot":  {},
	"Diamond":   {},
	"diamond":   {},
	"Phantom":   {},
	"phantom":   {},
	"Jupiter":   {},
	"jupiter":   {},
	"Raydium":   {},
	"raydium":   {},
	"Meteora":   {},
	"meteora":   {},
	"Telegram":  {},
	"telegram":  {},
	"Channel":   {},
	"channel":   {},
	"Private":   {},
	"private":   {},
	"Welcome":   {},
	"welcome":   {},
	"Trading":   {},
	"trading":   {},
	"Profits":   {},
	"profits":   {},
	"Million":   {},
	"million":   {},
	"Billion":   {},
	"billion":   {},

	// Long concatenations seen in spam captions
	"Congratulations": {},
	"congratulations": {},
}

// Well-known program and sysvar addresses. Valid Base58 keys, never token
// mints.
var solanaSystemAddresses = map[string]struct{}{
	"11111111111111111111111111111111":             {}, // system program
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA":  {}, // token program
	"So11111111111111111111111111111111111111112":  {}, // wrapped SOL mint
	"SysvarC1ock11111111111111111111111111111111":  {},
	"SysvarRent111111111111111111111111111111111":  {},
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": {}, // associated token program
	"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s":  {}, // metadata program
}

// SolanaDetector extracts Solana mint addresses (Base58, 32-44 chars).
// Addresses are case-sensitive, so no normalization is applied.
type SolanaDetector struct{}

// NewSolanaDetector returns the Solana chain detector
func NewSolanaDetector() *SolanaDetector {
	return &SolanaDetector{}
}

// ChainName returns the canonical chain identifier
func (d *SolanaDetector) ChainName() model.Chain {
	return model.ChainSolana
}

// Extract returns every distinct Solana address candidate in text.
// Rejection order: false-positive words, system addresses, then the
// mixed-case heuristic (a real key contains at least one uppercase and
// one lowercase letter; all-one-case runs are almost always English).
func (d *SolanaDetector) Extract(text string, conversationID, messageID int64) []model.Match {
	var matches []model.Match
	var seen map[string]struct{}
	now := time.Now().UTC()

	for _, group := range solanaPattern.FindAllString(text, -1) {
		if _, dup := seen[group]; dup {
			continue
		}
		if _, fp := solanaFalsePositives[group]; fp {
			continue
		}
		if _, sys := solanaSystemAddresses[group]; sys {
			continue
		}
		if !hasMixedCase(group) {
			continue
		}

		if seen == nil {
			seen = make(map[string]struct{})
		}
		seen[group] = struct{}{}
		matches = append(matches, model.Match{
			Contract:       group,
			Chain:          model.ChainSolana,
			ConversationID: conversationID,
			MessageID:      messageID,
			ObservedAt:     now,
		})
	}

	return matches
}

func hasMixedCase(s string) bool {
	var hasUpper, hasLower bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
		if hasUpper && hasLower {
			return true
		}
	}
	return false
}
