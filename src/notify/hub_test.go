package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsNotifications(t *testing.T) {
	hub := NewHub(logrus.NewEntry(logrus.New()))
	hub.now = func() time.Time { return time.Date(2026, 10, 15, 20, 20, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), "AMC scan: 1 buy")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	require.Equal(t, "summary", ev.Type)
	require.Equal(t, "AMC scan: 1 buy", ev.Text)
	require.True(t, ev.At.Equal(hub.now()))
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(logrus.NewEntry(logrus.New()))
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubNotifyNeverBlocks(t *testing.T) {
	hub := NewHub(logrus.NewEntry(logrus.New()))
	// no Run loop: the queue fills and further events are dropped
	for i := 0; i < hubBuffer+5; i++ {
		hub.Notify(context.Background(), "x")
	}
	require.Len(t, hub.broadcast, hubBuffer)
}

func httpHandler(h *Hub) http.Handler { return http.HandlerFunc(h.ServeWS) }
