package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/adred-codev/alpha-radar/internal/config"
	"github.com/adred-codev/alpha-radar/internal/detector"
	"github.com/adred-codev/alpha-radar/internal/model"
	"github.com/adred-codev/alpha-radar/internal/monitoring"
	"github.com/adred-codev/alpha-radar/internal/storage"
	"github.com/adred-codev/alpha-radar/internal/telegram"
	"github.com/adred-codev/alpha-radar/internal/trending"
)

// mentionStore is what the orchestrator itself needs from the
// repository; the trending engine holds its own slice of it
type mentionStore interface {
	Connect(ctx context.Context) error
	Close()
	Healthy(ctx context.Context) bool
	Record(ctx context.Context, m model.Match) (storage.RecordOutcome, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
	RecordAlert(ctx context.Context, t model.TrendingToken) error
}

// tokenScanner produces the ranked trending set
type tokenScanner interface {
	Scan(ctx context.Context) ([]model.TrendingToken, error)
}

// alertSender delivers one trending alert
type alertSender interface {
	Send(ctx context.Context, token model.TrendingToken) error
}

// transport runs the inbound message stream
type transport interface {
	Run(ctx context.Context) error
	Connected() bool
}

// Stats carries process counters surfaced by the health endpoint.
// Counters are atomics; MemoryMB is sampled by the collect loop.
type Stats struct {
	StartTime         time.Time
	MessagesProcessed int64
	MessagesFiltered  int64
	MentionsInserted  int64
	MentionsDuplicate int64
	RecordFailures    int64
	AlertsSent        int64
	AlertFailures     int64

	mu       sync.RWMutex
	MemoryMB float64
}

// App wires the whole pipeline: transport ingress through detectors
// into storage, the trending and retention loops, and the health and
// metrics surfaces.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger
	dryRun bool

	store    mentionStore
	registry *detector.Registry
	scanner  tokenScanner
	gate     *trending.Gate
	notifier alertSender
	listener transport

	healthServer  *http.Server
	metricsServer *http.Server

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	stats Stats
}

// New assembles the pipeline. No network or database is touched until
// Start.
func New(cfg *config.Config, logger zerolog.Logger, dryRun bool) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		cfg:    cfg,
		logger: logger.With().Str("component", "app").Logger(),
		dryRun: dryRun,
		ctx:    ctx,
		cancel: cancel,
		stats:  Stats{StartTime: time.Now()},
	}

	repo, err := storage.NewRepository(storage.Config{
		URL:      cfg.DatabaseURL(),
		MinConns: cfg.DBPoolMin,
		MaxConns: cfg.DBPoolMax,
		Logger:   logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build repository: %w", err)
	}
	a.store = repo

	a.registry = detector.NewRegistry(
		detector.NewSolanaDetector(),
		detector.NewEVMDetector(),
	)

	var (
		oracle trending.Oracle
		minLiq float64
	)
	if cfg.DexscreenerEnabled {
		oracle = trending.NewDexscreener(trending.DexscreenerConfig{Logger: logger})
		minLiq = cfg.DexscreenerMinLiquidity
	}
	a.scanner = trending.NewEngine(repo, trending.EngineConfig{
		Window:          cfg.Window(),
		MinMentions:     cfg.TrendingMinMentions,
		MinUniqueConvs:  cfg.TrendingMinUniqueChats,
		MinLiquidityUSD: minLiq,
		Oracle:          oracle,
		Logger:          logger,
	})

	a.gate = trending.NewGate(cfg.Cooldown(), nil)

	listener, err := telegram.NewListener(telegram.ListenerConfig{
		APIID:       cfg.TelegramAPIID,
		APIHash:     cfg.TelegramAPIHash,
		Phone:       cfg.TelegramPhone,
		SessionFile: cfg.SessionName + ".session.json",
		Logger:      logger,
		Handler:     a.handleMessage,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build listener: %w", err)
	}
	a.listener = listener

	a.notifier = telegram.NewNotifier(listener, telegram.NotifierConfig{
		DryRun: dryRun,
		Logger: logger,
	})

	chains := a.registry.Chains()
	chainNames := make([]string, len(chains))
	for i, c := range chains {
		chainNames[i] = string(c)
	}

	a.logger.Info().
		Bool("dry_run", dryRun).
		Strs("chains", chainNames).
		Dur("window", cfg.Window()).
		Dur("cooldown", cfg.Cooldown()).
		Dur("check_interval", cfg.CheckInterval()).
		Msg("Pipeline assembled")

	return a, nil
}

// Start connects storage, opens the health and metrics surfaces, and
// launches the background loops. Failure here is a startup failure; the
// transport is not yet running.
func (a *App) Start(ctx context.Context) error {
	if err := a.store.Connect(ctx); err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}

	if a.cfg.HealthEnabled {
		a.startHealthServer()
	}
	if a.cfg.MetricsEnabled {
		a.startMetricsServer()
	}

	a.wg.Add(1)
	go a.trendingLoop()

	a.wg.Add(1)
	go a.retentionLoop()

	a.wg.Add(1)
	go a.collectLoop()

	a.logger.Info().Msg("Pipeline started")
	return nil
}

// Run drives the transport until the context is cancelled or the
// client exhausts reconnection. Cancellation is a clean exit; any other
// error is fatal for the process.
func (a *App) Run(ctx context.Context) error {
	err := a.listener.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handleMessage is the ingress callback. It runs on the dispatcher
// goroutine: every match is recorded before the next update is
// processed, so a burst backpressures the reader instead of dropping
// records.
func (a *App) handleMessage(ctx context.Context, msg model.ChatMessage) {
	atomic.AddInt64(&a.stats.MessagesProcessed, 1)
	monitoring.RecordMessageProcessed()

	if a.dropMessage(msg) {
		atomic.AddInt64(&a.stats.MessagesFiltered, 1)
		monitoring.RecordMessageFiltered()
		return
	}

	for _, match := range a.registry.Extract(msg.Text, msg.ConversationID, msg.MessageID) {
		outcome, err := a.store.Record(ctx, match)
		switch outcome {
		case storage.RecordInserted:
			atomic.AddInt64(&a.stats.MentionsInserted, 1)
			a.logger.Debug().
				Str("contract", match.Contract).
				Str("chain", string(match.Chain)).
				Int64("conversation_id", match.ConversationID).
				Msg("Mention recorded")
		case storage.RecordDuplicate:
			atomic.AddInt64(&a.stats.MentionsDuplicate, 1)
		default:
			// Drop this record and keep going; the store may be back
			// for the next one
			atomic.AddInt64(&a.stats.RecordFailures, 1)
			monitoring.RecordStorageError()
			a.logger.Warn().
				Err(err).
				Str("contract", match.Contract).
				Msg("Mention record failed")
		}
		monitoring.RecordMention(string(match.Chain), outcome.String())
	}
}

// dropMessage applies the ingress pre-filters
func (a *App) dropMessage(msg model.ChatMessage) bool {
	if msg.Outgoing {
		return true
	}
	if utf8.RuneCountInString(msg.Text) < a.cfg.FilterMinMsgLength {
		return true
	}
	if a.cfg.FilterIgnoreForwarded && msg.Forwarded {
		return true
	}
	return false
}

func (a *App) trendingLoop() {
	defer a.wg.Done()
	defer monitoring.RecoverPanic(a.logger, "trending_loop")

	ticker := time.NewTicker(a.cfg.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.trendingPass(a.ctx)
		}
	}
}

// trendingPass runs one scan-and-alert cycle. Admission arms the
// cooldown before the send, so a failed send is not retried until the
// cooldown lapses.
func (a *App) trendingPass(ctx context.Context) {
	start := time.Now()
	tokens, err := a.scanner.Scan(ctx)
	monitoring.ObserveScanDuration(time.Since(start))
	if err != nil {
		monitoring.RecordStorageError()
		a.logger.Warn().Err(err).Msg("Trending scan failed")
		return
	}
	monitoring.SetTrendingCandidates(len(tokens))

	for _, token := range tokens {
		if !a.gate.Admit(token.Contract) {
			continue
		}

		if err := a.notifier.Send(ctx, token); err != nil {
			atomic.AddInt64(&a.stats.AlertFailures, 1)
			monitoring.RecordAlertSendFailure()
			continue
		}
		atomic.AddInt64(&a.stats.AlertsSent, 1)
		monitoring.RecordAlertEmitted()

		// History records what was alerted, so it follows the send
		if err := a.store.RecordAlert(ctx, token); err != nil {
			monitoring.RecordStorageError()
			a.logger.Warn().
				Err(err).
				Str("contract", token.Contract).
				Msg("Alert history write failed")
		}
	}

	a.gate.Prune()
	monitoring.SetCooldownEntries(a.gate.Size())
}

func (a *App) retentionLoop() {
	defer a.wg.Done()
	defer monitoring.RecoverPanic(a.logger, "retention_loop")

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-a.cfg.Retention())
			purged, err := a.store.Purge(a.ctx, cutoff)
			if err != nil {
				monitoring.RecordStorageError()
				a.logger.Warn().Err(err).Msg("Retention purge failed")
				continue
			}
			if purged > 0 {
				monitoring.AddPurgedMentions(purged)
				a.logger.Info().
					Int64("purged", purged).
					Time("cutoff", cutoff).
					Msg("Old mentions purged")
			}
		}
	}
}

func (a *App) startHealthServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.handleHealth)

	a.healthServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HealthPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info().Int("port", a.cfg.HealthPort).Msg("Health endpoint listening")
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("Health server error")
		}
	}()
}

func (a *App) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())

	a.metricsServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.MetricsPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info().Int("port", a.cfg.MetricsPort).Msg("Metrics endpoint listening")
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
}

// Shutdown stops the loops, the HTTP surfaces, and the repository, in
// that order. Safe to call more than once.
func (a *App) Shutdown() {
	a.stopOnce.Do(func() {
		a.logger.Info().Msg("Initiating graceful shutdown")
		a.cancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if a.healthServer != nil {
			if err := a.healthServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Error().Err(err).Msg("Health server shutdown error")
			}
		}
		if a.metricsServer != nil {
			if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Error().Err(err).Msg("Metrics server shutdown error")
			}
		}

		a.wg.Wait()
		a.store.Close()
		a.logger.Info().Msg("Graceful shutdown completed")
	})
}
