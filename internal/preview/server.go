// Package preview serves rendered frames to browsers and other websocket
// clients as PNG images.
package preview

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/joshvictor1024/go-fractal/internal/logger"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

const writeTimeout = 5 * time.Second

// Server fans finished frames out to every connected websocket client.
//
// Endpoints:
//   - /ws: binary messages, one PNG per published frame
//   - /frame.png: the latest frame
type Server struct {
	logger      types.Logger
	subscribers *xsync.Map[uint64, *subscriber]
	nextID      atomic.Uint64
	latest      atomic.Pointer[[]byte]
}

// NewServer creates a preview server. A nil logger discards messages.
func NewServer(l types.Logger) *Server {
	if l == nil {
		l = logger.NewNop()
	}
	return &Server{
		logger:      l,
		subscribers: xsync.NewMap[uint64, *subscriber](),
	}
}

// Handler returns the HTTP handler of all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/frame.png", s.handleFrame)
	return mux
}

// Publish encodes buf and hands it to every client. It does not wait for
// slow clients, and buf may be reused once Publish returns.
func (s *Server) Publish(buf *fractal.Buffer) {
	var out bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&out, buf); err != nil {
		s.logger.Warn("failed to encode preview frame", "error", err)
		return
	}
	frame := out.Bytes()
	s.latest.Store(&frame)

	s.subscribers.Range(func(_ uint64, sub *subscriber) bool {
		sub.trySend(frame)
		return true
	})
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	return s.subscribers.Size()
}

// Close disconnects every websocket client.
func (s *Server) Close() {
	s.subscribers.Range(func(id uint64, sub *subscriber) bool {
		s.removeSubscriber(id)
		return true
	})
}

func (s *Server) addSubscriber() (uint64, *subscriber) {
	id := s.nextID.Add(1)
	sub := newSubscriber()
	s.subscribers.Store(id, sub)
	return id, sub
}

func (s *Server) removeSubscriber(id uint64) {
	if sub, ok := s.subscribers.LoadAndDelete(id); ok {
		sub.close()
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame := s.latest.Load()
	if frame == nil {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(*frame)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	id, sub := s.addSubscriber()
	defer s.removeSubscriber(id)
	s.logger.Debug("preview client connected", "id", id, "remote", r.RemoteAddr)

	// clients only listen, reading just handles control frames
	ctx := c.CloseRead(r.Context())

	if frame := s.latest.Load(); frame != nil {
		sub.trySend(*frame)
	}

	for {
		select {
		case frame, ok := <-sub.ch:
			if !ok {
				c.Close(websocket.StatusGoingAway, "server closing")
				return
			}
			if err := s.write(ctx, c, frame); err != nil {
				s.logger.Debug("preview client gone", "id", id, "error", err)
				return
			}
		case <-ctx.Done():
			s.logger.Debug("preview client disconnected", "id", id)
			return
		}
	}
}

func (s *Server) write(ctx context.Context, c *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, frame)
}
