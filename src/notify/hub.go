package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	hubBuffer    = 64
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is read-only and sits behind the admin port
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message on the live feed.
type Event struct {
	Type string    `json:"type"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Hub broadcasts cycle summaries to websocket subscribers. It is a Notifier,
// so it slots into the same fan-out as the chat clients.
type Hub struct {
	logger    *logrus.Entry
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	lock      sync.Mutex
	now       func() time.Time
}

func NewHub(logger *logrus.Entry) *Hub {
	return &Hub{
		logger:    logger.WithField("component", "ws_hub"),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, hubBuffer),
		now:       time.Now,
	}
}

// Run writes queued messages to every client until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.lock.Lock()
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.WithError(err).Debug("dropping websocket client")
					client.Close()
					delete(h.clients, client)
				}
			}
			h.lock.Unlock()
		}
	}
}

// Notify queues a summary event. A full queue drops the message.
func (h *Hub) Notify(_ context.Context, text string) {
	payload, err := json.Marshal(Event{Type: "summary", Text: text, At: h.now().UTC()})
	if err != nil {
		h.logger.WithError(err).Error("failed to encode hub event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("hub queue full, event dropped")
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()

	// reads only detect the peer going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.lock.Lock()
				if h.clients[conn] {
					conn.Close()
					delete(h.clients, conn)
				}
				h.lock.Unlock()
				return
			}
		}
	}()
}

func (h *Hub) closeAll() {
	h.lock.Lock()
	defer h.lock.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
