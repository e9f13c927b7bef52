package detector

import (
	"regexp"
	"strings"
	"time"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// 0x followed by exactly 40 hex digits, word-bounded
var evmPattern = regexp.MustCompile(`\b(0x[0-9a-fA-F]{40})\b`)

// Zero, max, and conventional burn addresses
var evmBlacklist = map[string]struct{}{
	"0x0000000000000000000000000000000000000000": {},
	"0xffffffffffffffffffffffffffffffffffffffff": {},
	"0x000000000000000000000000000000000000dead": {},
	"0xdead000000000000000000000000000000000000": {},
}

// EVMDetector extracts contract addresses for EVM-compatible chains
// (Ethereum, BSC, Polygon, Base, Arbitrum, ...). Addresses are
// case-insensitive and normalized to lowercase, discarding checksum
// casing, so the same contract always persists under one key.
type EVMDetector struct{}

// NewEVMDetector returns the EVM chain detector
func NewEVMDetector() *EVMDetector {
	return &EVMDetector{}
}

// ChainName returns the canonical chain identifier
func (d *EVMDetector) ChainName() model.Chain {
	return model.ChainEVM
}

// Extract returns every distinct EVM address in text. Normalization to
// lowercase happens before dedup, so mixed-case variants of one address
// collapse to a single match.
func (d *EVMDetector) Extract(text string, conversationID, messageID int64) []model.Match {
	var matches []model.Match
	var seen map[string]struct{}
	now := time.Now().UTC()

	for _, group := range evmPattern.FindAllString(text, -1) {
		normalized := strings.ToLower(group)

		if _, dup := seen[normalized]; dup {
			continue
		}
		if _, burned := evmBlacklist[normalized]; burned {
			continue
		}

		if seen == nil {
			seen = make(map[string]struct{})
		}
		seen[normalized] = struct{}{}
		matches = append(matches, model.Match{
			Contract:       normalized,
			Chain:          model.ChainEVM,
			ConversationID: conversationID,
			MessageID:      messageID,
			ObservedAt:     now,
		})
	}

	return matches
}
