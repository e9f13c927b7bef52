package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/telegram/message"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adred-codev/alpha-radar/internal/model"
)

const (
	sendTimeout   = 10 * time.Second
	alertInterval = time.Second
)

// alertSink delivers a rendered alert. The live sink is the listener's
// Saved Messages sender.
type alertSink interface {
	SendSelf(ctx context.Context, parts ...message.StyledTextOption) error
}

// NotifierConfig holds alert delivery configuration
type NotifierConfig struct {
	DryRun bool
	Logger zerolog.Logger
}

// Notifier renders trending tokens into alerts and delivers them to the
// account's own Saved Messages. Alerts are paced with a token bucket on
// top of the client-level request limiter.
type Notifier struct {
	sink    alertSink
	limiter *rate.Limiter
	dryRun  bool
	logger  zerolog.Logger
}

// NewNotifier creates a notifier over the given sink
func NewNotifier(sink alertSink, cfg NotifierConfig) *Notifier {
	return &Notifier{
		sink:    sink,
		limiter: rate.NewLimiter(rate.Every(alertInterval), 1),
		dryRun:  cfg.DryRun,
		logger:  cfg.Logger.With().Str("component", "notifier").Logger(),
	}
}

// Send delivers one alert. In dry-run mode the rendered alert is logged
// and reported as delivered without touching the network. A send
// failure is logged with the full payload; the caller decides whether
// the alert counts.
func (n *Notifier) Send(ctx context.Context, token model.TrendingToken) error {
	text := alertText(token)

	if n.dryRun {
		n.logger.Info().Str("alert", text).Msg("Dry run, alert not sent")
		return nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pace alert: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := n.sink.SendSelf(sendCtx, alertParts(token)...); err != nil {
		n.logger.Error().Err(err).Str("alert", text).Msg("Alert send failed")
		return fmt.Errorf("send alert: %w", err)
	}

	n.logger.Info().
		Str("contract", token.Contract).
		Str("chain", string(token.Chain)).
		Float64("score", token.Score).
		Msg("Alert sent")

	return nil
}
