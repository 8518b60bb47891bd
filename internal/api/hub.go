package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/LotusZaheer/antidepressant/internal/observability"
)

// ChangeNotice is pushed to connected dashboard clients after a successful
// mutation so they refetch and recompute the chart.
type ChangeNotice struct {
	Type string `json:"type"` // "products" or "quantities"
}

// Hub fans change notices out to WebSocket subscribers. Clients only
// receive; inbound frames are read and discarded to service control
// messages.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a Hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-tenant dashboard behind the platform proxy; the
			// browser origin is not re-checked here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers the client until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.add(conn)
	defer h.remove(conn)

	// Block reading until the peer disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends a change notice to every connected client. Clients that
// fail to receive are dropped.
func (h *Hub) Broadcast(notice ChangeNotice) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(notice); err != nil {
			h.logger.Printf("websocket write failed, dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	observability.RecordWSBroadcast()
	observability.SetWSClients(len(h.clients))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	observability.SetWSClients(len(h.clients))
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.Close()
	delete(h.clients, conn)
	observability.SetWSClients(len(h.clients))
}
