package model

import "time"

// Chain identifies the blockchain a contract address belongs to
type Chain string

const (
	ChainSolana Chain = "solana"
	ChainEVM    Chain = "evm"
)

// ChatMessage is one inbound message as delivered by the transport
type ChatMessage struct {
	Text           string
	ConversationID int64
	MessageID      int64
	Forwarded      bool
	Outgoing       bool
}

// Match is a single contract sighting extracted from one chat message.
// Contract is already chain-normalized (lowercase for EVM, untouched for
// Solana). ObservedAt is the detection time in UTC, not the message's own
// timestamp.
type Match struct {
	Contract       string
	Chain          Chain
	ConversationID int64
	MessageID      int64
	ObservedAt     time.Time
}

// MentionAggregate summarizes one contract over a queried time window
type MentionAggregate struct {
	Contract            string
	Chain               Chain
	Mentions            int
	UniqueConversations int
	FirstSeen           time.Time
	LastSeen            time.Time
}

// TrendingToken is one scored trending candidate produced by a scan cycle.
// Liquidity and Symbol are oracle enrichments: zero/empty when the oracle
// is disabled or did not report.
type TrendingToken struct {
	Contract            string
	Chain               Chain
	Mentions            int
	UniqueConversations int
	Velocity            float64
	Score               float64
	Liquidity           float64
	Symbol              string
}
