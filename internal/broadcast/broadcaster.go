package broadcast

import (
	"context"
	"log"
	"time"
)

// Broadcaster glues projection and fan-out: every mutation path calls
// Refresh, which rebuilds the snapshot from scratch and publishes it.
type Broadcaster struct {
	hub       *Hub
	projector *Projector
}

func NewBroadcaster(hub *Hub, projector *Projector) *Broadcaster {
	return &Broadcaster{hub: hub, projector: projector}
}

func (b *Broadcaster) Hub() *Hub {
	return b.hub
}

func (b *Broadcaster) Refresh(ctx context.Context, businessID uint) {
	snapshot, err := b.projector.Build(ctx, businessID)
	if err != nil {
		log.Printf("broadcast: snapshot build failed for business %d: %v", businessID, err)
		return
	}
	b.hub.Publish(ctx, snapshot)
}

// Run periodically refreshes every business that has observers, so estimate
// drift is corrected even without mutations. Blocks until ctx is done.
func (b *Broadcaster) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, businessID := range b.hub.ObservedBusinesses() {
				b.Refresh(ctx, businessID)
			}
		}
	}
}
