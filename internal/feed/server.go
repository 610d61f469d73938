package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stock_go/internal/event"
)

const (
	writeWait      = 10 * time.Second
	clientSendBuf  = 64
	readLimitBytes = 512
)

// envelope is the wire format sent to subscribers.
type envelope struct {
	Type string      `json:"type"`
	Data event.Event `json:"data"`
}

// client is one connected subscriber. Slow clients are dropped rather
// than allowed to backpressure the tick loop.
type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
}

// Server broadcasts market events to websocket subscribers.
// It implements event.Sink; Publish never blocks on a client.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	httpSrv *http.Server
}

// NewServer creates an unstarted feed server.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local tool, no cross-origin story.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish marshals the event and fans it out to every subscriber.
// The event is serialized before Publish returns, so pooled events are
// safe to recycle.
func (s *Server) Publish(ev event.Event) {
	payload, err := json.Marshal(envelope{Type: typeName(ev.GetType()), Data: ev})
	if err != nil {
		slog.Error("FEED_MARSHAL_FAILED", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop it.
			delete(s.clients, c)
			close(c.send)
			slog.Warn("FEED_CLIENT_DROPPED", slog.String("remote", c.remote))
		}
	}
}

func typeName(t event.Type) string {
	switch t {
	case event.EvPriceUpdate:
		return "price"
	case event.EvTrade:
		return "trade"
	case event.EvSystemHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// ServeHTTP upgrades the connection and registers the subscriber.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("FEED_UPGRADE_FAILED", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, remote: conn.RemoteAddr().String(), send: make(chan []byte, clientSendBuf)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	slog.Info("Feed subscriber connected",
		slog.String("remote", c.remote), slog.Int("clients", n))

	go s.writePump(c)
	go s.readPump(c)
}

// writePump drains the client's send channel onto the socket.
func (s *Server) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.drop(c)
			return
		}
	}
}

// readPump discards inbound frames; its job is noticing the close.
func (s *Server) readPump(c *client) {
	c.conn.SetReadLimit(readLimitBytes)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.drop(c)
			return
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// ClientCount returns the number of connected subscribers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Start serves the feed on addr until the context is canceled.
func (s *Server) Start(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("Feed server listening", slog.String("addr", addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("FEED_SERVER_FAILED", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()
}
