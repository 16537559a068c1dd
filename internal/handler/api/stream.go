package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ScalpPulse/internal/domain/models"
	"ScalpPulse/internal/usecase"
	"ScalpPulse/pkg/logger"
)

const (
	clientSendBuffer = 16
	writeWait        = 5 * time.Second
	pingInterval     = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// signals are public read-only data; any origin may subscribe
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans generated signals out to WebSocket subscribers. Slow clients
// are disconnected; the pipeline never waits on a socket.
type Hub struct {
	log     *logger.Logger
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*hubClient]struct{}),
	}
}

// Broadcast sends entry to every connected client without blocking.
func (h *Hub) Broadcast(entry *models.SignalLogEntry) {
	b, err := json.Marshal(entry)
	if err != nil {
		h.log.Error("ws marshal failed", logger.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*hubClient
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow ws client")
		h.remove(c)
	}
}

// Close disconnects every subscriber with a going-away close frame.
// Used on graceful shutdown so clients do not wait out a read timeout.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		_ = cl.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		h.remove(cl)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stream upgrades the request and streams signals until the client
// disconnects.
func (h *Hub) Stream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &hubClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

func (h *Hub) writeLoop(cl *hubClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-cl.send:
			if !ok {
				_ = cl.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

// readLoop drains the connection so close frames are processed.
func (h *Hub) readLoop(cl *hubClient) {
	defer h.remove(cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(cl *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	_ = cl.conn.Close()
}

var _ usecase.Broadcaster = (*Hub)(nil)
