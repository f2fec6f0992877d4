// Package notifier delivers best-effort push notifications.
package notifier

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"feedpulse/internal/config"
	"feedpulse/internal/notifier/providers"
	"feedpulse/internal/types"
)

// Notification is one message to deliver.
type Notification struct {
	Title    string
	Body     string
	Priority types.Priority
	Tags     []string
}

// Sender is the delivery transport for notifications.
type Sender interface {
	Send(ctx context.Context, title, body string, priority types.Priority, tags []string) error
}

// Notifier wraps a Sender with rate limiting and the best-effort contract:
// delivery failure never propagates beyond a log line.
type Notifier struct {
	sender  Sender
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a notifier around the given sender. ratePerSec bounds
// outgoing sends; values below one fall back to one per second.
func New(sender Sender, ratePerSec int, log zerolog.Logger) *Notifier {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		log:     log.With().Str("component", "notifier").Logger(),
	}
}

// NewFromConfig creates a notifier with the configured provider.
func NewFromConfig(cfg config.NotifyConfig, log zerolog.Logger) (*Notifier, error) {
	var sender Sender

	switch cfg.Provider {
	case config.NotifyNtfy:
		sender = providers.NewNtfySender(cfg.Ntfy.ServerURL, cfg.Ntfy.Topic)
	case config.NotifySMTP:
		sender = providers.NewSMTPSender(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.FromAddr,
			cfg.SMTP.ToAddr,
		)
	case config.NotifyTelegram:
		var err error
		sender, err = providers.NewTelegramSender(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}

	return New(sender, cfg.RatePerSec, log), nil
}

// Notify delivers a notification. Failures are logged and swallowed;
// callers never need to handle delivery errors.
func (n *Notifier) Notify(ctx context.Context, noti Notification) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn().Err(err).Str("title", noti.Title).Msg("notification dropped before send")
		return
	}
	if err := n.sender.Send(ctx, noti.Title, noti.Body, noti.Priority, noti.Tags); err != nil {
		n.log.Warn().Err(err).Str("title", noti.Title).Msg("notification send failed")
		return
	}
	n.log.Debug().Str("title", noti.Title).Str("priority", string(noti.Priority)).Msg("notification sent")
}

// SetRate adjusts the send rate limit at runtime (config reload).
func (n *Notifier) SetRate(ratePerSec int) {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	n.limiter.SetLimit(rate.Limit(ratePerSec))
	n.limiter.SetBurst(ratePerSec)
}
