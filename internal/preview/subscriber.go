package preview

import "sync"

// subscriber holds at most one pending frame. A slow client skips frames and
// always gets the newest one next.
type subscriber struct {
	ch     chan []byte
	mu     sync.Mutex
	closed bool
}

func newSubscriber() *subscriber {
	return &subscriber{ch: make(chan []byte, 1)}
}

// trySend replaces a pending frame with frame without blocking.
func (s *subscriber) trySend(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- frame:
		return
	default:
	}
	// drop the stale frame, we hold the only sending side
	select {
	case <-s.ch:
	default:
	}
	s.ch <- frame
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
