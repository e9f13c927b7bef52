package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/adred-codev/alpha-radar/internal/app"
	"github.com/adred-codev/alpha-radar/internal/config"
	"github.com/adred-codev/alpha-radar/internal/monitoring"
	"github.com/adred-codev/alpha-radar/internal/telegram"
)

// Exit codes: 0 clean shutdown, 1 startup/configuration failure,
// 2 irrecoverable runtime failure.
const (
	exitOK      = 0
	exitStartup = 1
	exitRuntime = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		debug  = flag.Bool("debug", false, "enable debug logging (overrides LOG_LEVEL)")
		dryRun = flag.Bool("dry-run", false, "skip alert delivery but still record alert history")
	)
	flag.Parse()

	// Basic logger for the window before the structured logger exists
	startupLog := log.New(os.Stdout, "[radar] ", log.LstdFlags)

	// automaxprocs has already sized GOMAXPROCS from the container CPU limit
	startupLog.Printf("GOMAXPROCS: %d", runtime.GOMAXPROCS(0))

	cfg, err := config.Load(nil)
	if err != nil {
		startupLog.Printf("Failed to load configuration: %v", err)
		return exitStartup
	}

	if *debug {
		cfg.LogLevel = "debug"
		startupLog.Printf("Debug mode enabled via flag")
	}

	logger := monitoring.NewLogger(monitoring.LoggerConfig{
		Level: cfg.LogLevel,
		JSON:  cfg.LogJSON,
	})
	cfg.LogConfig(logger)

	radar, err := app.New(cfg, logger, *dryRun)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to assemble pipeline")
		return exitStartup
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := radar.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start pipeline")
		return exitStartup
	}

	// Run blocks on the Telegram stream until the signal context is
	// cancelled or the client gives up reconnecting
	err = radar.Run(ctx)
	radar.Shutdown()

	switch code := exitCode(err); code {
	case exitStartup:
		logger.Error().Err(err).Msg("Telegram authentication failed")
		return code
	case exitRuntime:
		logger.Error().Err(err).Msg("Transport failed irrecoverably")
		return code
	}

	logger.Info().Msg("Shutdown complete")
	return exitOK
}

// exitCode classifies how the transport ended. A failed login is a
// credential problem, not a runtime one.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return exitOK
	case errors.Is(err, telegram.ErrAuth):
		return exitStartup
	default:
		return exitRuntime
	}
}
