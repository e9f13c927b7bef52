package trending

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gateContract = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func TestGateSuppressesInsideCooldown(t *testing.T) {
	mock := clock.NewMock()
	gate := NewGate(15*time.Minute, mock)

	require.True(t, gate.Admit(gateContract), "first alert should pass")

	mock.Add(1 * time.Minute)
	assert.False(t, gate.Admit(gateContract), "suppressed at 1m")

	mock.Add(4 * time.Minute)
	assert.False(t, gate.Admit(gateContract), "suppressed at 5m")

	mock.Add(9 * time.Minute)
	assert.False(t, gate.Admit(gateContract), "suppressed at 14m")

	mock.Add(1*time.Minute + 1*time.Second)
	assert.True(t, gate.Admit(gateContract), "admitted after cooldown expiry")
}

func TestGateSuppressedCheckDoesNotExtendCooldown(t *testing.T) {
	mock := clock.NewMock()
	gate := NewGate(10*time.Minute, mock)

	require.True(t, gate.Admit(gateContract))

	// Hammer the gate right before expiry; the window must not slide
	mock.Add(9 * time.Minute)
	for i := 0; i < 5; i++ {
		assert.False(t, gate.Admit(gateContract))
	}

	mock.Add(1 * time.Minute)
	assert.True(t, gate.Admit(gateContract))
}

func TestGateTracksContractsIndependently(t *testing.T) {
	mock := clock.NewMock()
	gate := NewGate(15*time.Minute, mock)

	require.True(t, gate.Admit("contractA"))
	assert.True(t, gate.Admit("contractB"), "other contracts are unaffected")
	assert.False(t, gate.Admit("contractA"))
}

func TestGateReArmsAfterExpiry(t *testing.T) {
	mock := clock.NewMock()
	gate := NewGate(5*time.Minute, mock)

	require.True(t, gate.Admit(gateContract))
	mock.Add(5 * time.Minute)
	require.True(t, gate.Admit(gateContract), "admit at exact expiry")

	// The second admit armed a fresh window
	mock.Add(4 * time.Minute)
	assert.False(t, gate.Admit(gateContract))
}

func TestGatePrune(t *testing.T) {
	mock := clock.NewMock()
	gate := NewGate(10*time.Minute, mock)

	require.True(t, gate.Admit("contractA"))
	mock.Add(5 * time.Minute)
	require.True(t, gate.Admit("contractB"))
	assert.Equal(t, 2, gate.Size())

	// contractA expired at 10m, contractB lives until 15m
	mock.Add(6 * time.Minute)
	assert.Equal(t, 1, gate.Prune())
	assert.Equal(t, 1, gate.Size())

	assert.False(t, gate.Admit("contractB"), "surviving entry still suppresses")
	assert.True(t, gate.Admit("contractA"), "pruned entry admits again")
}

func TestGateWallClockDefault(t *testing.T) {
	gate := NewGate(time.Minute, nil)
	assert.True(t, gate.Admit(gateContract))
	assert.False(t, gate.Admit(gateContract))
}
