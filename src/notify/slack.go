package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type slackPostMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SlackNotifier posts messages with chat.postMessage.
type SlackNotifier struct {
	logger  *logrus.Entry
	http    *resty.Client
	channel string
}

// NewSlackNotifier returns Noop unless both token and channel are set.
func NewSlackNotifier(logger *logrus.Entry, token, channel, baseURL string, timeout time.Duration) Notifier {
	if token == "" || channel == "" {
		return Noop{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if baseURL == "" {
		baseURL = "https://slack.com/api"
	}
	return &SlackNotifier{
		logger: logger.WithField("notifier", "slack"),
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAuthToken(token).
			SetHeader("Content-Type", "application/json; charset=utf-8"),
		channel: channel,
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, text string) {
	var out slackResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(slackPostMessage{Channel: s.channel, Text: text}).
		SetResult(&out).
		Post("/chat.postMessage")
	if err != nil {
		s.logger.WithError(err).Warn("Slack notification failed")
		return
	}
	if resp.IsError() || !out.OK {
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"error":  out.Error,
		}).Warn("Slack rejected notification")
	}
}
