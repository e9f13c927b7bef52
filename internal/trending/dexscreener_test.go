package trending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOracle(t *testing.T, handler http.HandlerFunc) *Dexscreener {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewDexscreener(DexscreenerConfig{
		BaseURL: srv.URL + "/latest/dex/tokens/",
		Timeout: 2 * time.Second,
		Logger:  zerolog.Nop(),
	})
}

func TestDexscreenerLookupPicksDeepestPair(t *testing.T) {
	var gotPath string
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"pairs": [
				{"liquidity": {"usd": 50000}, "baseToken": {"symbol": ""}},
				{"liquidity": {"usd": 125000.5}, "baseToken": {"symbol": "PEPE"}},
				{"liquidity": {"usd": 80000}, "baseToken": {"symbol": "PEPE2"}}
			]
		}`))
	})

	info, ok := oracle.Lookup(context.Background(), "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.True(t, ok)
	assert.Equal(t, "/latest/dex/tokens/0xdac17f958d2ee523a2206206994597c13d831ec7", gotPath)
	assert.Equal(t, 125000.5, info.Liquidity)
	assert.Equal(t, "PEPE", info.Symbol)
}

func TestDexscreenerLookupNoPairs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `{"pairs": []}`},
		{name: "null pairs", body: `{"pairs": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			info, ok := oracle.Lookup(context.Background(), "someContract")
			// A pairless token is a real answer, not a lookup failure
			require.True(t, ok)
			assert.Zero(t, info.Liquidity)
			assert.Empty(t, info.Symbol)
		})
	}
}

func TestDexscreenerLookupBadStatus(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, ok := oracle.Lookup(context.Background(), "someContract")
	assert.False(t, ok)
}

func TestDexscreenerLookupBadBody(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [`))
	})

	_, ok := oracle.Lookup(context.Background(), "someContract")
	assert.False(t, ok)
}

func TestDexscreenerLookupTimeout(t *testing.T) {
	oracle := newTestOracle(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"pairs": []}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := oracle.Lookup(ctx, "someContract")
	assert.False(t, ok)
}

func TestDexscreenerDefaults(t *testing.T) {
	oracle := NewDexscreener(DexscreenerConfig{Logger: zerolog.Nop()})
	assert.Equal(t, dexscreenerBaseURL, oracle.baseURL)
	assert.Equal(t, dexscreenerTimeout, oracle.client.Timeout)
}
