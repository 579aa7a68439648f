package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestNotifier_Subscribe_Unsubscribe(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	n.Unsubscribe(ch)
	assert.Equal(t, 0, n.Len())

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel should be closed")
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1 := n.Subscribe("a")
	ch2 := n.Subscribe("b")
	defer n.Unsubscribe(ch1)
	defer n.Unsubscribe(ch2)

	n.Broadcast()

	assert.True(t, received(ch1), "ch1 did not receive broadcast")
	assert.True(t, received(ch2), "ch2 did not receive broadcast")
}

func TestNotifier_NotifyOnlyMatchingKey(t *testing.T) {
	n := New()

	mine := n.Subscribe("session-1")
	alsoMine := n.Subscribe("session-1")
	other := n.Subscribe("session-2")
	defer n.Unsubscribe(mine)
	defer n.Unsubscribe(alsoMine)
	defer n.Unsubscribe(other)

	n.Notify("session-1")

	assert.True(t, received(mine))
	assert.True(t, received(alsoMine))
	select {
	case <-other:
		t.Error("listener of another session was notified")
	default:
	}
}

func TestNotifier_Broadcast_NonBlocking(t *testing.T) {
	n := New()

	ch := n.Subscribe("a")
	defer n.Unsubscribe(ch)

	// Fill the channel buffer
	ch <- struct{}{}

	done := make(chan bool)
	go func() {
		n.Broadcast()
		n.Notify("a")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Broadcast blocked on full channel")
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	const numGoroutines = 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := n.Subscribe("k")
			n.Broadcast()
			n.Notify("k")
			n.Unsubscribe(ch)
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, n.Len())
}
