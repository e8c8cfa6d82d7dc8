package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	subscriberBuffer = 8
	snapshotCacheTTL = 5 * time.Minute
)

// Hub is the per-business observer registry. It is constructed on service
// start, injected where needed, and torn down with Close.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[string]chan Snapshot
	closed bool

	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subs: make(map[uint]map[string]chan Snapshot),
		rdb:  rdb,
	}
}

// Subscribe registers an observer for one business and returns its id plus
// the snapshot stream.
func (h *Hub) Subscribe(businessID uint) (string, <-chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Snapshot, subscriberBuffer)

	if h.closed {
		close(ch)
		return id, ch
	}

	if h.subs[businessID] == nil {
		h.subs[businessID] = make(map[string]chan Snapshot)
	}
	h.subs[businessID][id] = ch
	return id, ch
}

func (h *Hub) Unsubscribe(businessID uint, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(businessID, id)
}

// drop must be called with the lock held.
func (h *Hub) drop(businessID uint, id string) {
	observers, ok := h.subs[businessID]
	if !ok {
		return
	}
	if ch, ok := observers[id]; ok {
		close(ch)
		delete(observers, id)
	}
	if len(observers) == 0 {
		delete(h.subs, businessID)
	}
}

// Publish delivers the snapshot to every observer of the business. An
// observer that cannot keep up is dropped and deregistered, never retried,
// and never blocks the others.
func (h *Hub) Publish(ctx context.Context, snapshot Snapshot) {
	h.mu.Lock()
	var stale []string
	for id, ch := range h.subs[snapshot.BusinessID] {
		select {
		case ch <- snapshot:
		default:
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		log.Printf("broadcast: dropping slow observer %s (business %d)", id, snapshot.BusinessID)
		h.drop(snapshot.BusinessID, id)
	}
	h.mu.Unlock()

	h.cache(ctx, snapshot)
}

func (h *Hub) cache(ctx context.Context, snapshot Snapshot) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := h.rdb.Set(ctx, snapshotKey(snapshot.BusinessID), payload, snapshotCacheTTL).Err(); err != nil {
		log.Printf("broadcast: snapshot cache write failed: %v", err)
	}
}

// Cached returns the last published snapshot, letting a fresh subscriber
// paint immediately before the next publish.
func (h *Hub) Cached(ctx context.Context, businessID uint) (*Snapshot, bool) {
	if h.rdb == nil {
		return nil, false
	}
	payload, err := h.rdb.Get(ctx, snapshotKey(businessID)).Bytes()
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// ObservedBusinesses lists businesses that currently have at least one
// observer; the periodic refresher iterates these.
func (h *Hub) ObservedBusinesses() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]uint, 0, len(h.subs))
	for id := range h.subs {
		out = append(out, id)
	}
	return out
}

func (h *Hub) HasObservers(businessID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[businessID]) > 0
}

// Close tears the registry down and closes every observer channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for businessID, observers := range h.subs {
		for id, ch := range observers {
			close(ch)
			delete(observers, id)
		}
		delete(h.subs, businessID)
	}
}

func snapshotKey(businessID uint) string {
	return fmt.Sprintf("queueline:snapshot:%d", businessID)
}
