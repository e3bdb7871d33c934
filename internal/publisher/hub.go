package publisher

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bondflow/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub fans published quote payloads out to connected websocket viewers. Slow
// viewers are disconnected rather than allowed to stall the broadcast.
type Hub struct {
	addr       string
	httpServer *http.Server
	mu         sync.Mutex
	clients    map[*client]struct{}
	log        *logger.Entry
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(addr string) *Hub {
	return &Hub{
		addr:    addr,
		clients: make(map[*client]struct{}),
		log:     logger.GetLogger().WithComponent("quote_hub"),
	}
}

// Run serves the websocket endpoint until the context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/quotes", h.handleQuotes)

	h.httpServer = &http.Server{Addr: h.addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := h.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	h.log.WithField("addr", h.addr).Info("quote hub listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (h *Hub) handleQuotes(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.WithField("remote", conn.RemoteAddr().String()).Info("viewer connected")
	go h.writePump(c)
}

func (h *Hub) writePump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.WithError(err).Debug("viewer write failed, dropping connection")
			return
		}
	}
}

// Broadcast delivers payload to every connected viewer. A viewer with a full
// queue is dropped.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Viewers reports the number of connected clients.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
