package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adred-codev/alpha-radar/internal/model"
)

// ErrAuth marks authentication failures, which are fatal at startup
// rather than retryable transport trouble
var ErrAuth = errors.New("telegram authentication failed")

// Handler consumes one inbound chat message. It runs on the update
// dispatcher goroutine; returning promptly keeps the stream moving.
type Handler func(ctx context.Context, msg model.ChatMessage)

// ListenerConfig holds transport configuration
type ListenerConfig struct {
	APIID       int
	APIHash     string
	Phone       string
	SessionFile string
	Logger      zerolog.Logger
	Handler     Handler
}

// Listener owns the MTProto client: session, auth, reconnection, and
// the update stream. Every new user, group, or channel message is
// converted to a ChatMessage and handed to the configured Handler;
// filtering is the pipeline's job, not the transport's.
type Listener struct {
	cfg       ListenerConfig
	client    *telegram.Client
	waiter    *floodwait.Waiter
	sender    *message.Sender
	logger    zerolog.Logger
	connected atomic.Bool
}

// NewListener builds the client and wires the update dispatcher. The
// network is not touched until Run.
func NewListener(cfg ListenerConfig) (*Listener, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" || cfg.Phone == "" {
		return nil, fmt.Errorf("telegram credentials are required")
	}
	if cfg.SessionFile == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("message handler is required")
	}

	l := &Listener{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "listener").Logger(),
	}

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewMessage(l.onNewMessage)
	dispatcher.OnNewChannelMessage(l.onNewChannelMessage)

	l.waiter = floodwait.NewWaiter().WithCallback(func(ctx context.Context, wait floodwait.FloodWait) {
		l.logger.Warn().Dur("wait", wait.Duration).Msg("Flood wait, pausing requests")
	})

	l.client = telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionFile},
		UpdateHandler:  dispatcher,
		Middlewares: []telegram.Middleware{
			l.waiter,
			ratelimit.New(rate.Every(100*time.Millisecond), 5),
		},
		ReconnectionBackoff: func() backoff.BackOff {
			// Keep retrying for as long as the process lives
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 0
			return b
		},
	})
	l.sender = message.NewSender(l.client.API())

	return l, nil
}

// Run connects, authenticates, and consumes updates until the context
// is cancelled or the client exhausts its reconnection policy. The
// returned error wraps ErrAuth when authorization itself failed.
func (l *Listener) Run(ctx context.Context) error {
	defer l.connected.Store(false)

	return l.waiter.Run(ctx, func(ctx context.Context) error {
		return l.client.Run(ctx, func(ctx context.Context) error {
			flow := auth.NewFlow(
				auth.Constant(l.cfg.Phone, "", auth.CodeAuthenticatorFunc(promptLoginCode)),
				auth.SendCodeOptions{},
			)
			if err := l.client.Auth().IfNecessary(ctx, flow); err != nil {
				return fmt.Errorf("%w: %w", ErrAuth, err)
			}

			self, err := l.client.Self(ctx)
			if err != nil {
				return fmt.Errorf("resolve self: %w", err)
			}
			l.connected.Store(true)
			l.logger.Info().
				Int64("user_id", self.ID).
				Str("username", self.Username).
				Msg("Telegram connected")

			<-ctx.Done()
			return ctx.Err()
		})
	})
}

// Connected reports whether the session is authenticated and live. It
// feeds the health endpoint.
func (l *Listener) Connected() bool {
	return l.connected.Load()
}

// SendSelf posts styled text to the account's Saved Messages
func (l *Listener) SendSelf(ctx context.Context, parts ...message.StyledTextOption) error {
	_, err := l.sender.Self().StyledText(ctx, parts...)
	return err
}

func (l *Listener) onNewMessage(ctx context.Context, _ tg.Entities, u *tg.UpdateNewMessage) error {
	l.deliver(ctx, u.Message)
	return nil
}

func (l *Listener) onNewChannelMessage(ctx context.Context, _ tg.Entities, u *tg.UpdateNewChannelMessage) error {
	l.deliver(ctx, u.Message)
	return nil
}

// deliver converts a raw update into a ChatMessage. Service messages
// and empty messages carry no text and are skipped here; everything
// else, own messages included, goes to the pipeline.
func (l *Listener) deliver(ctx context.Context, raw tg.MessageClass) {
	msg, ok := raw.(*tg.Message)
	if !ok {
		return
	}
	_, forwarded := msg.GetFwdFrom()

	l.cfg.Handler(ctx, model.ChatMessage{
		Text:           msg.Message,
		ConversationID: peerID(msg.PeerID),
		MessageID:      int64(msg.ID),
		Forwarded:      forwarded,
		Outgoing:       msg.Out,
	})
}

// peerID flattens the peer union into the conversation id
func peerID(peer tg.PeerClass) int64 {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID
	case *tg.PeerChat:
		return p.ChatID
	case *tg.PeerChannel:
		return p.ChannelID
	default:
		return 0
	}
}

func promptLoginCode(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	fmt.Print("Enter the Telegram login code: ")
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read login code: %w", err)
	}
	return strings.TrimSpace(code), nil
}
