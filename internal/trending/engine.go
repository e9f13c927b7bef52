package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// MentionSource is the slice of the store the engine reads
type MentionSource interface {
	Trending(ctx context.Context, since time.Time, minMentions, minUnique int, chain model.Chain) ([]model.MentionAggregate, error)
	CountMentions(ctx context.Context, contract string, since, until time.Time) (int, error)
}

// EngineConfig holds trending engine configuration
type EngineConfig struct {
	Window          time.Duration // Aggregation window
	MinMentions     int           // Candidate gate: total mentions
	MinUniqueConvs  int           // Candidate gate: distinct conversations
	MinLiquidityUSD float64       // 0 disables the liquidity filter
	Clock           clock.Clock   // Nil uses wall time
	Oracle          Oracle        // Required when the liquidity filter is on
	Logger          zerolog.Logger
}

// Engine turns windowed mention aggregates into a ranked trending set.
// It holds no state between scans; every Scan reads the store fresh.
type Engine struct {
	source MentionSource
	cfg    EngineConfig
	clock  clock.Clock
	logger zerolog.Logger
}

// NewEngine creates a trending engine over the given mention source
func NewEngine(source MentionSource, cfg EngineConfig) *Engine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Engine{
		source: source,
		cfg:    cfg,
		clock:  clk,
		logger: cfg.Logger.With().Str("component", "trending").Logger(),
	}
}

// Scan computes the current trending set: load candidates for the live
// window, derive velocity against the previous window, score, apply the
// optional liquidity filter, and rank. Any store error aborts the whole
// scan; a partial trending set is worse than none.
func (e *Engine) Scan(ctx context.Context) ([]model.TrendingToken, error) {
	now := e.clock.Now().UTC()
	since := now.Add(-e.cfg.Window)

	aggs, err := e.source.Trending(ctx, since, e.cfg.MinMentions, e.cfg.MinUniqueConvs, "")
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	tokens := make([]model.TrendingToken, 0, len(aggs))
	for _, agg := range aggs {
		previous, err := e.source.CountMentions(ctx, agg.Contract, since.Add(-e.cfg.Window), since)
		if err != nil {
			return nil, fmt.Errorf("count previous window for %s: %w", agg.Contract, err)
		}

		vel := velocity(agg.Mentions, previous)
		token := model.TrendingToken{
			Contract:            agg.Contract,
			Chain:               agg.Chain,
			Mentions:            agg.Mentions,
			UniqueConversations: agg.UniqueConversations,
			Velocity:            vel,
			Score:               score(agg.Mentions, agg.UniqueConversations, vel),
		}

		if e.cfg.MinLiquidityUSD > 0 && e.cfg.Oracle != nil {
			info, ok := e.cfg.Oracle.Lookup(ctx, agg.Contract)
			if ok {
				if info.Liquidity < e.cfg.MinLiquidityUSD {
					e.logger.Debug().
						Str("contract", agg.Contract).
						Float64("liquidity_usd", info.Liquidity).
						Msg("Dropped candidate below liquidity floor")
					continue
				}
				token.Liquidity = info.Liquidity
				token.Symbol = info.Symbol
			} else {
				// No answer keeps the candidate: the filter fails open
				e.logger.Debug().
					Str("contract", agg.Contract).
					Msg("Liquidity unknown, keeping candidate")
			}
		}

		tokens = append(tokens, token)
	}

	sortTokens(tokens)
	return tokens, nil
}

// velocity is the relative change against the previous window. With no
// baseline the raw current count stands in, so fresh tokens rank high.
func velocity(current, previous int) float64 {
	if previous == 0 {
		return float64(current)
	}
	return float64(current-previous) / float64(previous)
}

func score(mentions, unique int, velocity float64) float64 {
	return 2*float64(mentions) + 3*float64(unique) + 5*velocity
}

// sortTokens ranks deterministically: chains ascending by name, then
// score, mentions, and unique conversations descending, contract as the
// final tiebreak.
func sortTokens(tokens []model.TrendingToken) {
	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if a.Chain != b.Chain {
			return a.Chain < b.Chain
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Mentions != b.Mentions {
			return a.Mentions > b.Mentions
		}
		if a.UniqueConversations != b.UniqueConversations {
			return a.UniqueConversations > b.UniqueConversations
		}
		return a.Contract < b.Contract
	})
}
