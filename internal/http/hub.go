package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Event names broadcast to UI collaborators.
const (
	EventSelectionChanged = "selection-changed"
	EventPlaylistsChanged = "playlists-changed"
	EventDevicesChanged   = "devices-changed"
	EventLoading          = "loading"
	EventNotice           = "notice"
)

type wsEvent struct {
	Event   string `json:"event"`
	Message string `json:"message,omitempty"`
	Loading *bool  `json:"loading,omitempty"`
	At      int64  `json:"at"`
}

// Hub fans refresh signals and notices out to connected WebSocket clients.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*wsClient

	onCount func(int)
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan wsEvent
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger.Named("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the control API binds to loopback only
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*wsClient),
	}
}

// SetClientCountHook registers a callback invoked with the client count on
// every connect and disconnect.
func (h *Hub) SetClientCountHook(fn func(int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCount = fn
}

// ServeWS upgrades a request and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan wsEvent, 16),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	hook := h.onCount
	h.mu.Unlock()
	if hook != nil {
		hook(count)
	}

	h.logger.Debug("client connected", zap.String("session", client.id))
	go h.writePump(client)
	go h.readPump(client)
}

// Broadcast sends an event to every connected client. Slow clients are
// dropped rather than blocking the engine.
func (h *Hub) Broadcast(event wsEvent) {
	event.At = time.Now().UnixMilli()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.logger.Debug("dropping slow client", zap.String("session", id))
			close(client.send)
			delete(h.clients, id)
		}
	}
}

// Signal broadcasts a bare refresh event.
func (h *Hub) Signal(name string) {
	h.Broadcast(wsEvent{Event: name})
}

// Notice broadcasts a user-facing message.
func (h *Hub) Notice(level, msg string) {
	h.Broadcast(wsEvent{Event: EventNotice, Message: level + ": " + msg})
}

// Loading broadcasts the loading flag.
func (h *Hub) Loading(loading bool) {
	l := loading
	h.Broadcast(wsEvent{Event: EventLoading, Loading: &l})
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()
	for {
		// clients only listen; reads just detect disconnects
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	count := len(h.clients)
	hook := h.onCount
	h.mu.Unlock()
	if hook != nil {
		hook(count)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
