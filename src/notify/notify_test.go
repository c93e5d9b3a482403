package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"earningsbot/src/model"
)

type recorder struct{ texts []string }

func (r *recorder) Notify(_ context.Context, text string) { r.texts = append(r.texts, text) }

func TestUnconfiguredNotifiersAreNoop(t *testing.T) {
	require.Equal(t, Noop{}, NewSlackNotifier(nil, "", "C1", "", time.Second))
	require.Equal(t, Noop{}, NewSlackNotifier(nil, "xoxb", "", "", time.Second))
	require.Equal(t, Noop{}, NewTelegramNotifier(nil, "", "42", "", time.Second))
	require.Equal(t, Noop{}, FromConfig(nil, Config{}))
}

func TestNewMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	require.Equal(t, Noop{}, NewMulti(nil, Noop{}))
	require.Same(t, a, NewMulti(a, Noop{}))

	m := NewMulti(a, nil, b)
	m.Notify(context.Background(), "hello")
	require.Equal(t, []string{"hello"}, a.texts)
	require.Equal(t, []string{"hello"}, b.texts)
}

func TestSlackNotifierPostsMessage(t *testing.T) {
	var got slackPostMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat.postMessage", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewSlackNotifier(nil, "xoxb-test", "C123", srv.URL, time.Second)
	n.Notify(context.Background(), "BUY ACME")

	require.Equal(t, "Bearer xoxb-test", auth)
	require.Equal(t, slackPostMessage{Channel: "C123", Text: "BUY ACME"}, got)
}

func TestSlackNotifierLogsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	l, hook := logrustest.NewNullLogger()
	n := NewSlackNotifier(logrus.NewEntry(l), "xoxb-test", "C123", srv.URL, time.Second)
	n.Notify(context.Background(), "hi")

	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Equal(t, "channel_not_found", hook.LastEntry().Data["error"])
}

func TestTelegramNotifierSendsMessage(t *testing.T) {
	var got telegramSendMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	l, hook := logrustest.NewNullLogger()
	n := NewTelegramNotifier(logrus.NewEntry(l), "123:abc", "-100", srv.URL, time.Second)
	n.Notify(context.Background(), "SELL ACME")

	require.Equal(t, telegramSendMessage{ChatID: "-100", Text: "SELL ACME"}, got)
	require.Empty(t, hook.AllEntries())
}

func TestTelegramNotifierServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	l, hook := logrustest.NewNullLogger()
	n := NewTelegramNotifier(logrus.NewEntry(l), "t", "1", srv.URL, time.Second)
	n.Notify(context.Background(), "x")

	require.Equal(t, "chat not found", hook.LastEntry().Data["description"])
}

func TestOrderPublisherPublishesKeyedJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "ACME" {
			return errors.New("unexpected key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var r model.OrderResult
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		if r.OrderID != "o-1" || r.Action != model.SideBuy {
			return errors.New("unexpected payload")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewOrderPublisherWithProducer(nil, producer, "orders")
	require.NoError(t, pub.MirrorOrder(context.Background(), model.OrderResult{OrderID: "o-1", Ticker: "ACME", Action: model.SideBuy}))
	require.ErrorIs(t, pub.MirrorOrder(context.Background(), model.OrderResult{OrderID: "o-2", Ticker: "ACME"}), sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestNewOrderPublisherDisabledWithoutBrokers(t *testing.T) {
	pub, err := NewOrderPublisher(nil, nil, "orders")
	require.NoError(t, err)
	require.Nil(t, pub)
}
