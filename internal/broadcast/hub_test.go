package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllObservers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	_, ch1 := hub.Subscribe(1)
	_, ch2 := hub.Subscribe(1)
	_, other := hub.Subscribe(2)

	hub.Publish(context.Background(), Snapshot{BusinessID: 1, GeneratedAt: time.Now()})

	for _, ch := range []<-chan Snapshot{ch1, ch2} {
		select {
		case snap := <-ch:
			assert.Equal(t, uint(1), snap.BusinessID)
		default:
			t.Fatal("observer did not receive snapshot")
		}
	}

	select {
	case <-other:
		t.Fatal("observer of another business received snapshot")
	default:
	}
}

func TestHub_SlowObserverIsDropped(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	_, ch := hub.Subscribe(1)

	// Fill the buffer without draining, then publish once more.
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Publish(context.Background(), Snapshot{BusinessID: 1})
	}

	assert.False(t, hub.HasObservers(1))

	// The channel was closed on drop; draining ends cleanly.
	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	id, ch := hub.Subscribe(7)
	hub.Unsubscribe(7, id)

	_, open := <-ch
	assert.False(t, open)
	assert.False(t, hub.HasObservers(7))
}

func TestHub_ObservedBusinesses(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	hub.Subscribe(1)
	hub.Subscribe(3)

	got := hub.ObservedBusinesses()
	assert.ElementsMatch(t, []uint{1, 3}, got)
}

func TestHub_CloseShutsEverythingDown(t *testing.T) {
	hub := NewHub(nil)

	_, ch := hub.Subscribe(1)
	hub.Close()

	_, open := <-ch
	require.False(t, open)

	// Subscribing after close hands back a closed channel.
	_, late := hub.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
