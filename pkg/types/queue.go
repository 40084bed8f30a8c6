package types

import (
	"sync"
)

// FIFO with unlimited capacity and internal buffer access
// not thread safe
type queue[T any] struct {
	data []T
}

func (q *queue[T]) len() int {
	return len(q.data)
}

func (q *queue[T]) push(v T) {
	q.data = append(q.data, v)
}

// panics if empty
func (q *queue[T]) pop() T {
	var zero T
	v := q.data[0]
	q.data[0] = zero
	q.data = q.data[1:]
	return v
}

// 1 ctrl M send N recv
type ControlledQueue[T any] struct {
	data          queue[T]
	mu            sync.Mutex
	requestRecvCh chan struct{}
	stopCh        chan struct{}
	closeOnce     sync.Once
}

func NewControlledQueue[T any]() *ControlledQueue[T] {
	return &ControlledQueue[T]{
		stopCh:        make(chan struct{}),
		requestRecvCh: make(chan struct{}, 1),
	}
}

// stops the queue, pending values are dropped
// safe to call more than once
func (cq *ControlledQueue[T]) Close() {
	cq.closeOnce.Do(func() {
		cq.mu.Lock()
		close(cq.stopCh)
		cq.mu.Unlock()
	})
}

// return true on Send
// return false if closed and not Send
func (cq *ControlledQueue[T]) Send(v T) bool {
	select {
	case <-cq.stopCh:
		return false
	default:
	}

	cq.mu.Lock()
	cq.data.push(v)
	cq.mu.Unlock()

	// wake one blocked receiver, a pending token is enough
	select {
	case cq.requestRecvCh <- struct{}{}:
	default:
	}
	return true
}

// blocks on empty to wait to receive
func (cq *ControlledQueue[T]) Recv() (T, bool) {
	_, v, ok := cq.AttemptRecv(true)
	return v, ok
}

// return (false, zero, true) on empty
// return (true, v, true) on recv
// return (true, zero, false) on closed
// can opt out of blocking on empty
func (cq *ControlledQueue[T]) AttemptRecv(blockOnEmpty bool) (canRecv bool, v T, ok bool) {
	for {
		select {
		case <-cq.stopCh:
			return true, v, false
		default:
		}

		cq.mu.Lock()
		if cq.data.len() > 0 {
			break
		}
		cq.mu.Unlock()
		if !blockOnEmpty {
			return false, v, true
		}

		select {
		case <-cq.requestRecvCh:
		case <-cq.stopCh:
		}
	}

	v = cq.data.pop()
	more := cq.data.len() > 0
	cq.mu.Unlock()

	// pass the wake up on so other receivers see the remaining values
	if more {
		select {
		case cq.requestRecvCh <- struct{}{}:
		default:
		}
	}
	return true, v, true
}

// number of values waiting
func (cq *ControlledQueue[T]) Len() int {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	return cq.data.len()
}
