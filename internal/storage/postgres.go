package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// RecordOutcome reports what happened to one mention insert. Duplicate is
// a first-class status, not an error: the caller counts it.
type RecordOutcome int

const (
	RecordFailed RecordOutcome = iota
	RecordInserted
	RecordDuplicate
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordInserted:
		return "inserted"
	case RecordDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Dedup is enforced here, by the store: the UNIQUE constraint is what
// makes counting robust against retries and duplicate events.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS mentions (
		id BIGSERIAL PRIMARY KEY,
		contract TEXT NOT NULL,
		chain TEXT NOT NULL,
		conversation_id BIGINT NOT NULL,
		message_id BIGINT NOT NULL,
		observed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (contract, conversation_id, message_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mentions_contract_time
		ON mentions (contract, observed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_mentions_contract_conv_time
		ON mentions (contract, conversation_id, observed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_mentions_chain_time
		ON mentions (chain, observed_at)`,
	`CREATE TABLE IF NOT EXISTS alert_history (
		id BIGSERIAL PRIMARY KEY,
		contract TEXT NOT NULL,
		chain TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		mentions INT NOT NULL,
		unique_conversations INT NOT NULL,
		velocity DOUBLE PRECISION NOT NULL,
		alerted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_contract_time
		ON alert_history (contract, alerted_at)`,
}

const (
	insertMentionSQL = `
		INSERT INTO mentions (contract, chain, conversation_id, message_id, observed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contract, conversation_id, message_id) DO NOTHING
		RETURNING id`

	// Half-open window: the upper bound is evaluated at query time
	trendingSQL = `
		SELECT contract, chain,
		       COUNT(*) AS mentions,
		       COUNT(DISTINCT conversation_id) AS unique_conversations,
		       MIN(observed_at) AS first_seen,
		       MAX(observed_at) AS last_seen
		FROM mentions
		WHERE observed_at >= $1 AND observed_at < NOW()
		GROUP BY contract, chain
		HAVING COUNT(*) >= $2 AND COUNT(DISTINCT conversation_id) >= $3`

	trendingByChainSQL = `
		SELECT contract, chain,
		       COUNT(*) AS mentions,
		       COUNT(DISTINCT conversation_id) AS unique_conversations,
		       MIN(observed_at) AS first_seen,
		       MAX(observed_at) AS last_seen
		FROM mentions
		WHERE observed_at >= $1 AND observed_at < NOW() AND chain = $4
		GROUP BY contract, chain
		HAVING COUNT(*) >= $2 AND COUNT(DISTINCT conversation_id) >= $3`

	countMentionsSQL = `
		SELECT COUNT(*)
		FROM mentions
		WHERE contract = $1 AND observed_at >= $2 AND observed_at < $3`

	purgeSQL = `
		DELETE FROM mentions
		WHERE observed_at < $1`

	insertAlertSQL = `
		INSERT INTO alert_history (contract, chain, score, mentions, unique_conversations, velocity)
		VALUES ($1, $2, $3, $4, $5, $6)`
)

// Config holds repository configuration
type Config struct {
	URL      string // Postgres connection URL
	MinConns int    // Pool lower bound
	MaxConns int    // Pool upper bound
	Logger   zerolog.Logger
}

// Repository persists contract mentions and serves the windowed
// aggregates the trending engine reads. All operations are cancellable
// through the supplied context.
type Repository struct {
	cfg    Config
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRepository creates a repository. Connect must be called before use.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}
	if cfg.MinConns < 1 || cfg.MaxConns < cfg.MinConns {
		return nil, fmt.Errorf("invalid pool bounds: min=%d max=%d", cfg.MinConns, cfg.MaxConns)
	}

	return &Repository{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "storage").Logger(),
	}, nil
}

// Connect acquires the connection pool, verifies connectivity, and
// creates the schema if absent. Failure here is fatal at startup:
// authentication and schema problems cannot be retried away.
func (r *Repository) Connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(r.cfg.URL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MinConns = int32(r.cfg.MinConns)
	poolCfg.MaxConns = int32(r.cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return fmt.Errorf("init schema: %w", err)
		}
	}

	r.pool = pool
	r.logger.Info().
		Int("pool_min", r.cfg.MinConns).
		Int("pool_max", r.cfg.MaxConns).
		Msg("Mention repository connected")

	return nil
}

// Close releases the pool. Safe to call more than once.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
		r.logger.Info().Msg("Mention repository closed")
	}
}

// Healthy reports whether the store answers a ping within a short budget
func (r *Repository) Healthy(ctx context.Context) bool {
	if r.pool == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(ctx) == nil
}

// Record persists one mention. A replay of the same
// (contract, conversation, message) triple reports RecordDuplicate with
// no error; RecordFailed always carries one.
func (r *Repository) Record(ctx context.Context, m model.Match) (RecordOutcome, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertMentionSQL,
		m.Contract, string(m.Chain), m.ConversationID, m.MessageID, m.ObservedAt).Scan(&id)
	return classifyRecord(err)
}

func classifyRecord(err error) (RecordOutcome, error) {
	if err == nil {
		return RecordInserted, nil
	}
	// ON CONFLICT DO NOTHING suppresses the RETURNING row
	if errors.Is(err, pgx.ErrNoRows) {
		return RecordDuplicate, nil
	}
	// The violation can also surface directly; it still means duplicate
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return RecordDuplicate, nil
	}
	return RecordFailed, fmt.Errorf("record mention: %w", err)
}

// Trending returns contracts whose totals inside [since, now()) clear
// both gates. Pass chain "" for all chains. Result order is unspecified;
// ranking is the engine's job.
func (r *Repository) Trending(ctx context.Context, since time.Time, minMentions, minUnique int, chain model.Chain) ([]model.MentionAggregate, error) {
	query := trendingSQL
	args := []any{since, minMentions, minUnique}
	if chain != "" {
		query = trendingByChainSQL
		args = append(args, string(chain))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trending: %w", err)
	}
	defer rows.Close()

	var aggs []model.MentionAggregate
	for rows.Next() {
		var a model.MentionAggregate
		var c string
		if err := rows.Scan(&a.Contract, &c, &a.Mentions, &a.UniqueConversations, &a.FirstSeen, &a.LastSeen); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		a.Chain = model.Chain(c)
		aggs = append(aggs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}

	return aggs, nil
}

// CountMentions returns the mention total for one contract in
// [since, until)
func (r *Repository) CountMentions(ctx context.Context, contract string, since, until time.Time) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, countMentionsSQL, contract, since, until).Scan(&count); err != nil {
		return 0, fmt.Errorf("count mentions: %w", err)
	}
	return count, nil
}

// Purge deletes mentions observed before the cutoff and returns the
// deleted row count
func (r *Repository) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, purgeSQL, before)
	if err != nil {
		return 0, fmt.Errorf("purge mentions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecordAlert appends one row to the alert audit trail
func (r *Repository) RecordAlert(ctx context.Context, t model.TrendingToken) error {
	_, err := r.pool.Exec(ctx, insertAlertSQL,
		t.Contract, string(t.Chain), t.Score, t.Mentions, t.UniqueConversations, t.Velocity)
	if err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	return nil
}
