// Package feed pushes aggregated depth snapshots to websocket subscribers on
// a fixed interval. Read-only: it never touches the write path.
package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vela/domain/book"
	"vela/service"
)

// DepthMessage is one pushed frame.
type DepthMessage struct {
	Time int64            `json:"ts"`
	Bids []book.LevelInfo `json:"bids"`
	Asks []book.LevelInfo `json:"asks"`
}

type Server struct {
	svc      *service.OrderService
	interval time.Duration
	depth    int
	log      *zap.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewServer(svc *service.OrderService, interval time.Duration, depth int, log *zap.Logger) *Server {
	return &Server{
		svc:      svc,
		interval: interval,
		depth:    depth,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades a subscriber connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	n := len(s.conns)
	s.mu.Unlock()
	s.log.Info("subscriber connected", zap.Int("subscribers", n))

	// Drain (and discard) client frames so pings and closes are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// Run broadcasts snapshots until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.broadcast()
		}
	}
}

func (s *Server) broadcast() {
	s.mu.Lock()
	if len(s.conns) == 0 {
		s.mu.Unlock()
		return
	}
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	snap := s.svc.Depth()
	msg := DepthMessage{
		Time: time.Now().UnixNano(),
		Bids: truncate(snap.Bids, s.depth),
		Asks: truncate(snap.Asks, s.depth),
	}

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteJSON(msg); err != nil {
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *websocket.Conn) {
	s.mu.Lock()
	if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		_ = c.Close()
	}
	s.mu.Unlock()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
}

func truncate(levels []book.LevelInfo, n int) []book.LevelInfo {
	if n <= 0 || len(levels) <= n {
		return levels
	}
	return levels[:n]
}
