package trending

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Gate suppresses repeat alerts for a contract while its cooldown is
// live. It is owned by the trending loop alone, so it carries no lock.
type Gate struct {
	cooldown time.Duration
	clock    clock.Clock
	expires  map[string]time.Time
}

// NewGate creates a cooldown gate. A nil clock uses wall time.
func NewGate(cooldown time.Duration, clk clock.Clock) *Gate {
	if clk == nil {
		clk = clock.New()
	}

	return &Gate{
		cooldown: cooldown,
		clock:    clk,
		expires:  make(map[string]time.Time),
	}
}

// Admit reports whether an alert for the contract may fire now and arms
// the cooldown when it may. A suppressed check does not extend the
// window.
func (g *Gate) Admit(contract string) bool {
	now := g.clock.Now()
	if exp, ok := g.expires[contract]; ok && now.Before(exp) {
		return false
	}
	g.expires[contract] = now.Add(g.cooldown)
	return true
}

// Prune drops expired entries and returns how many were removed
func (g *Gate) Prune() int {
	now := g.clock.Now()
	removed := 0
	for contract, exp := range g.expires {
		if !now.Before(exp) {
			delete(g.expires, contract)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked contracts, expired or not
func (g *Gate) Size() int {
	return len(g.expires)
}
