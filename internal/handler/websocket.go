package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/service"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// WebSocketHandler streams catalog mutation events to connected
// clients. It implements service.Notifier.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*websocket.Conn]chan service.Event
	cancels  map[*websocket.Conn]context.CancelFunc
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan service.Event),
		cancels: make(map[*websocket.Conn]context.CancelFunc),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// Notify broadcasts a catalog event to every connected client. Clients
// whose send buffer is full drop the event rather than block the
// mutation path.
func (h *WebSocketHandler) Notify(e service.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, send := range h.clients {
		select {
		case send <- e:
		default:
			h.logger.Debug("dropping event for slow websocket client",
				zap.String("remote_addr", conn.RemoteAddr().String()))
		}
	}
}

// HandleWebSocket handles WebSocket connection requests.
//
// The connection uses a background context rather than the request
// context: the HTTP request context is canceled when this handler
// returns, but the connection outlives the upgrade.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	send := make(chan service.Event, sendBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	h.cancels[conn] = cancel
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, conn, send)
	go h.readPump(ctx, conn, cancel)
}

// CloseAllConnections closes every active client connection; used
// during server shutdown.
func (h *WebSocketHandler) CloseAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, cancel := range h.cancels {
		cancel()
		_ = conn.Close()
	}
	h.clients = make(map[*websocket.Conn]chan service.Event)
	h.cancels = make(map[*websocket.Conn]context.CancelFunc)
}

// readPump drains incoming messages and detects client disconnects.
func (h *WebSocketHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer func() {
		cancel()
		h.removeClient(conn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}
}

// writePump forwards catalog events and keeps the connection alive
// with pings.
func (h *WebSocketHandler) writePump(ctx context.Context, conn *websocket.Conn, send <-chan service.Event) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case event := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("failed to send event", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

func (h *WebSocketHandler) sendCloseMessage(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down"),
	)
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	delete(h.cancels, conn)
}
