package main

import (
	"sync"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// publishQueue hands finished frames from the event loop to a publisher
// goroutine. a frame still waiting is replaced by a newer one,
// so a slow publisher never holds up the window
// 1 ctrl 1 send 1 recv
type publishQueue struct {
	cq      *types.ControlledQueue[*fractal.Buffer]
	publish func(*fractal.Buffer)
	sendMu  sync.Mutex
	wg      sync.WaitGroup
}

func newPublishQueue(publish func(*fractal.Buffer)) *publishQueue {
	pq := &publishQueue{
		cq:      types.NewControlledQueue[*fractal.Buffer](),
		publish: publish,
	}
	pq.wg.Add(1)
	go pq.work()
	return pq
}

// stops the publisher, a frame still waiting is dropped
func (pq *publishQueue) close() {
	pq.cq.Close()
	pq.wg.Wait()
}

// return false if closed and not send
func (pq *publishQueue) send(frame *fractal.Buffer) bool {
	pq.sendMu.Lock()
	defer pq.sendMu.Unlock()

	// drop the stale frame
	for pq.cq.Len() > 0 {
		canRecv, _, ok := pq.cq.AttemptRecv(false)
		if !ok {
			return false
		}
		if !canRecv {
			break
		}
	}
	return pq.cq.Send(frame)
}

func (pq *publishQueue) work() {
	defer pq.wg.Done()
	for {
		frame, ok := pq.cq.Recv()
		if !ok {
			return
		}
		pq.publish(frame)
	}
}
