package types

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestControlledQueueOrder(t *testing.T) {
	cq := NewControlledQueue[int]()
	defer cq.Close()

	for i := 0; i < 5; i++ {
		require.True(t, cq.Send(i))
	}
	require.Equal(t, 5, cq.Len())

	for i := 0; i < 5; i++ {
		v, ok := cq.Recv()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.Equal(t, 0, cq.Len())
}

func TestControlledQueueAttemptRecvEmpty(t *testing.T) {
	cq := NewControlledQueue[string]()
	defer cq.Close()

	canRecv, v, ok := cq.AttemptRecv(false)
	require.False(t, canRecv)
	require.Equal(t, "", v)
	require.True(t, ok)

	require.True(t, cq.Send("a"))
	canRecv, v, ok = cq.AttemptRecv(false)
	require.True(t, canRecv)
	require.Equal(t, "a", v)
	require.True(t, ok)
}

func TestControlledQueueReceiversDrainSends(t *testing.T) {
	const (
		receivers = 4
		sends     = 1000
	)
	cq := NewControlledQueue[int]()

	var mu sync.Mutex
	seen := make(map[int]int, sends)
	var wg sync.WaitGroup
	wg.Add(receivers)
	for r := 0; r < receivers; r++ {
		go func() {
			defer wg.Done()
			for {
				v, ok := cq.Recv()
				if !ok {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < sends; i++ {
		require.True(t, cq.Send(i))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == sends
	}, 5*time.Second, time.Millisecond)

	cq.Close()
	wg.Wait()

	for i := 0; i < sends; i++ {
		require.Equal(t, 1, seen[i], "value %d", i)
	}
}

func TestControlledQueueCloseUnblocksRecv(t *testing.T) {
	cq := NewControlledQueue[int]()

	type result struct {
		v  int
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		v, ok := cq.Recv()
		done <- result{v, ok}
	}()

	select {
	case <-done:
		t.Fatal("Recv returned on an empty open queue")
	case <-time.After(20 * time.Millisecond):
	}

	cq.Close()
	select {
	case r := <-done:
		require.False(t, r.ok)
		require.Equal(t, 0, r.v)
	case <-time.After(time.Second):
		t.Fatal("Recv still blocked after Close")
	}
}

func TestControlledQueueClosed(t *testing.T) {
	cq := NewControlledQueue[int]()
	require.True(t, cq.Send(1))

	cq.Close()
	cq.Close()

	require.False(t, cq.Send(2))

	// pending values are dropped
	canRecv, v, ok := cq.AttemptRecv(false)
	require.True(t, canRecv)
	require.Equal(t, 0, v)
	require.False(t, ok)

	_, ok = cq.Recv()
	require.False(t, ok)
}
