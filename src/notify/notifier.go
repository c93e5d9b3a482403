package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier pushes a human-readable message to an operator channel. Implementations
// log their own failures; a notification never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Noop is the unconfigured notifier.
type Noop struct{}

func (Noop) Notify(context.Context, string) {}

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) {
	for _, n := range m {
		n.Notify(ctx, text)
	}
}

// NewMulti drops nil and Noop notifiers and returns Noop when nothing is left.
func NewMulti(notifiers ...Notifier) Notifier {
	var kept Multi
	for _, n := range notifiers {
		if n == nil {
			continue
		}
		if _, ok := n.(Noop); ok {
			continue
		}
		kept = append(kept, n)
	}
	switch len(kept) {
	case 0:
		return Noop{}
	case 1:
		return kept[0]
	}
	return kept
}

// FromConfig builds the chat notifiers that have credentials configured.
func FromConfig(logger *logrus.Entry, cfg Config) Notifier {
	return NewMulti(
		NewSlackNotifier(logger, cfg.SlackBotToken, cfg.SlackChannel, cfg.SlackBaseURL, cfg.Timeout),
		NewTelegramNotifier(logger, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramBaseURL, cfg.Timeout),
	)
}
