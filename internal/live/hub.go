package live

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Hub hands out one Feed per owner with reference counting: the first
// Acquire starts the subscription, the last Release stops it. Owners with no
// connected clients cost nothing.
type Hub struct {
	R         *redis.Client
	Store     SaleReader
	RecentCap int
	Logger    zerolog.Logger
	Now       func() time.Time

	mu    sync.Mutex
	feeds map[string]*entry
}

type entry struct {
	feed *Feed
	refs int
}

// Acquire returns the owner's feed, starting it if this is the first client.
func (h *Hub) Acquire(ctx context.Context, ownerID string) (*Feed, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.feeds == nil {
		h.feeds = make(map[string]*entry)
	}
	if e, ok := h.feeds[ownerID]; ok {
		e.refs++
		return e.feed, nil
	}
	feed := &Feed{
		OwnerID:   ownerID,
		R:         h.R,
		Store:     h.Store,
		RecentCap: h.RecentCap,
		Logger:    h.Logger,
		Now:       h.Now,
	}
	// Subscriptions outlive the acquiring request.
	if err := feed.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	h.feeds[ownerID] = &entry{feed: feed, refs: 1}
	return feed, nil
}

// Release drops one reference and tears the feed down when none remain.
func (h *Hub) Release(ownerID string) {
	h.mu.Lock()
	var stopped *Feed
	if e, ok := h.feeds[ownerID]; ok {
		e.refs--
		if e.refs <= 0 {
			delete(h.feeds, ownerID)
			stopped = e.feed
		}
	}
	h.mu.Unlock()
	if stopped != nil {
		stopped.Stop()
	}
}

// Shutdown stops every live feed. Used on server exit.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	feeds := make([]*Feed, 0, len(h.feeds))
	for _, e := range h.feeds {
		feeds = append(feeds, e.feed)
	}
	h.feeds = nil
	h.mu.Unlock()
	for _, f := range feeds {
		f.Stop()
	}
}
