package trending

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// TokenInfo is what the liquidity oracle knows about one contract
type TokenInfo struct {
	Liquidity float64 // Deepest pair, USD
	Symbol    string
}

// Oracle resolves market liquidity for a contract. Implementations
// report ok=false when they have no answer, never zero liquidity: the
// two mean different things to the filter.
type Oracle interface {
	Lookup(ctx context.Context, contract string) (TokenInfo, bool)
}

const (
	dexscreenerBaseURL = "https://api.dexscreener.com/latest/dex/tokens/"
	dexscreenerTimeout = 5 * time.Second
)

// DexscreenerConfig holds oracle configuration
type DexscreenerConfig struct {
	BaseURL string        // Defaults to the public Dexscreener API
	Timeout time.Duration // Defaults to 5s
	Logger  zerolog.Logger
}

// Dexscreener looks up pair liquidity on the public Dexscreener API.
// Lookups are best effort: any transport, status, or decode problem is
// reported as no answer so the caller can fail open.
type Dexscreener struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewDexscreener creates an oracle backed by the Dexscreener token API
func NewDexscreener(cfg DexscreenerConfig) *Dexscreener {
	if cfg.BaseURL == "" {
		cfg.BaseURL = dexscreenerBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = dexscreenerTimeout
	}

	return &Dexscreener{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger.With().Str("component", "dexscreener").Logger(),
	}
}

type dexPair struct {
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	BaseToken struct {
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
}

type dexResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// Lookup fetches pairs for the contract and reduces them to the deepest
// liquidity and a display symbol. A contract with no pairs is a real
// answer: ok with zero liquidity.
func (d *Dexscreener) Lookup(ctx context.Context, contract string) (TokenInfo, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+contract, nil)
	if err != nil {
		d.logger.Warn().Err(err).Str("contract", contract).Msg("Failed to build lookup request")
		return TokenInfo{}, false
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn().Err(err).Str("contract", contract).Msg("Liquidity lookup failed")
		return TokenInfo{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn().
			Int("status", resp.StatusCode).
			Str("contract", contract).
			Msg("Liquidity lookup returned unexpected status")
		return TokenInfo{}, false
	}

	var body dexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		d.logger.Warn().Err(err).Str("contract", contract).Msg("Failed to decode lookup response")
		return TokenInfo{}, false
	}

	var info TokenInfo
	for _, p := range body.Pairs {
		if p.Liquidity.USD > info.Liquidity {
			info.Liquidity = p.Liquidity.USD
		}
		if info.Symbol == "" && p.BaseToken.Symbol != "" {
			info.Symbol = p.BaseToken.Symbol
		}
	}

	return info, true
}
