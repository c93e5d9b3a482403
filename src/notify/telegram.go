package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type telegramSendMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// TelegramNotifier sends plain-text messages through the Bot API.
type TelegramNotifier struct {
	logger *logrus.Entry
	http   *resty.Client
	token  string
	chatID string
}

// NewTelegramNotifier returns Noop unless both token and chat id are set.
func NewTelegramNotifier(logger *logrus.Entry, token, chatID, baseURL string, timeout time.Duration) Notifier {
	if token == "" || chatID == "" {
		return Noop{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		logger: logger.WithField("notifier", "telegram"),
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		token:  token,
		chatID: chatID,
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) {
	var out telegramResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetPathParam("token", t.token).
		SetBody(telegramSendMessage{ChatID: t.chatID, Text: text}).
		SetResult(&out).
		SetError(&out).
		Post("/bot{token}/sendMessage")
	if err != nil {
		t.logger.WithError(err).Warn("Telegram notification failed")
		return
	}
	if resp.IsError() || !out.OK {
		t.logger.WithFields(logrus.Fields{
			"status":      resp.StatusCode(),
			"description": out.Description,
		}).Warn("Telegram rejected notification")
	}
}
