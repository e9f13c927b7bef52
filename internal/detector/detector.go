package detector

import (
	"github.com/adred-codev/alpha-radar/internal/model"
)

// Detector extracts contract mentions for one chain from raw message text.
//
// Implementations must be pure: no I/O, no retained state, deterministic
// output for a given input. A malformed candidate is simply not emitted;
// extraction never fails. Duplicate contract strings within one message
// collapse to a single Match (first occurrence wins).
//
// To add a new chain:
//  1. Implement Detector with a fresh chain name and a pattern disjoint
//     from the existing detectors.
//  2. Register it in the registry built at startup.
//
// No downstream component needs to change.
type Detector interface {
	ChainName() model.Chain
	Extract(text string, conversationID, messageID int64) []model.Match
}

// Registry fans one message through every registered detector in order
type Registry struct {
	detectors []Detector
}

// NewRegistry builds an immutable registry. Order is preserved: matches
// from earlier detectors precede matches from later ones.
func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

// Extract concatenates the matches of every detector. There is no
// cross-detector dedup: chain patterns are disjoint, so two detectors
// cannot produce the same normalized contract.
func (r *Registry) Extract(text string, conversationID, messageID int64) []model.Match {
	var matches []model.Match
	for _, d := range r.detectors {
		matches = append(matches, d.Extract(text, conversationID, messageID)...)
	}
	return matches
}

// Chains returns the registered chain names in registration order
func (r *Registry) Chains() []model.Chain {
	chains := make([]model.Chain, 0, len(r.detectors))
	for _, d := range r.detectors {
		chains = append(chains, d.ChainName())
	}
	return chains
}
