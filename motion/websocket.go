package motion

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/panorama"
)

// WebSocketSource is an http.Handler that accepts WebSocket connections
// from a phone browser streaming DeviceOrientation readings as JSON text
// messages (see Wire). Several phones may connect; the latest reading wins.
type WebSocketSource struct {
	upgrader websocket.Upgrader
	feed     feed
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewWebSocketSource creates the handler. Mount it on any path.
func NewWebSocketSource(logger *slog.Logger) *WebSocketSource {
	return &WebSocketSource{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // phones load the sender page from anywhere on the LAN
			},
		},
		logger: orDiscard(logger).With("source", "websocket"),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Available always reports true; readings arrive once a client connects.
func (s *WebSocketSource) Available() bool { return true }

// Start begins accepting readings.
func (s *WebSocketSource) Start(deliver func(panorama.AttitudeSample)) error {
	return s.feed.start(deliver)
}

// Stop closes every open connection.
func (s *WebSocketSource) Stop() error {
	if err := s.feed.stop(); err != nil {
		return err
	}
	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
	for c := range conns {
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "tracking stopped"))
		_ = c.Close()
	}
	return nil
}

// Stats returns delivery counts.
func (s *WebSocketSource) Stats() Stats {
	return s.feed.stats()
}

// Connections returns the number of open connections.
func (s *WebSocketSource) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// ServeHTTP upgrades the request and reads readings until the client goes
// away or the source stops.
func (s *WebSocketSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.feed.running() {
		http.Error(w, "motion tracking is off", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read failed", "err", err)
			}
			return
		}
		sample, err := Decode(data)
		if err != nil {
			s.feed.drop()
			s.logger.Debug("dropped payload", "err", err)
			continue
		}
		if !s.feed.send(sample) {
			return
		}
	}
}
