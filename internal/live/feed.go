package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/store"
)

// DefaultRecentCap bounds the in-memory recent list per owner.
const DefaultRecentCap = 10

// SaleReader is the ledger access the feed needs to materialise events.
type SaleReader interface {
	GetSaleWithLines(ctx context.Context, ownerID, saleID string) (store.SaleWithLines, error)
	SumSales(ctx context.Context, ownerID string, from, to time.Time) (store.SalesTotals, error)
}

// Snapshot is the copy handed to readers. Today's totals are recomputed from
// the store on every accepted event rather than incremented, so duplicate or
// replayed deliveries cannot drift the counters.
type Snapshot struct {
	Recent []store.SaleWithLines `json:"recent"`
	Today  store.SalesTotals     `json:"today"`
}

// Feed is one owner's live sale stream. It subscribes to the owner's pub/sub
// channel on Start and owns a bounded, duplicate-free recent list. Start and
// Stop bracket the subscription explicitly; nothing outlives its context.
type Feed struct {
	OwnerID   string
	R         *redis.Client
	Store     SaleReader
	RecentCap int
	Logger    zerolog.Logger
	Now       func() time.Time

	mu       sync.RWMutex
	recent   []store.SaleWithLines
	seen     map[string]struct{}
	today    store.SalesTotals
	watchers map[chan struct{}]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func (f *Feed) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Feed) cap() int {
	if f.RecentCap > 0 {
		return f.RecentCap
	}
	return DefaultRecentCap
}

// Start primes today's totals and begins consuming the owner channel. It
// returns once the subscription is confirmed; message handling continues in
// the background until Stop or context cancellation.
func (f *Feed) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	f.seen = make(map[string]struct{})

	if err := f.refreshToday(ctx); err != nil {
		f.Logger.Warn().Err(err).Str("owner_id", f.OwnerID).Msg("live feed: initial totals unavailable")
	}

	sub := f.R.Subscribe(ctx, events.ChannelFor(f.OwnerID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		cancel()
		close(f.done)
		return err
	}
	go f.consume(ctx, sub)
	return nil
}

// Stop tears the subscription down and waits for the consumer to exit.
func (f *Feed) Stop() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

func (f *Feed) consume(ctx context.Context, sub *redis.PubSub) {
	defer close(f.done)
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.handle(ctx, msg.Payload)
		}
	}
}

func (f *Feed) handle(ctx context.Context, payload string) {
	var env events.Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		f.Logger.Warn().Err(err).Str("owner_id", f.OwnerID).Msg("live feed: malformed event")
		obs.IncFeedEvent("malformed")
		return
	}
	if env.Topic != events.TopicSaleCommitted || env.AggregateID == "" {
		obs.IncFeedEvent("ignored")
		return
	}
	if f.alreadySeen(env.AggregateID) {
		obs.IncFeedEvent("duplicate")
		return
	}
	sale, err := f.Store.GetSaleWithLines(ctx, f.OwnerID, env.AggregateID)
	if err != nil {
		f.Logger.Warn().Err(err).Str("owner_id", f.OwnerID).Str("sale_id", env.AggregateID).Msg("live feed: sale fetch failed")
		obs.IncFeedEvent("fetch_failed")
		return
	}
	f.insert(sale)
	if err := f.refreshToday(ctx); err != nil {
		f.Logger.Warn().Err(err).Str("owner_id", f.OwnerID).Msg("live feed: totals refresh failed")
	}
	obs.IncFeedEvent("accepted")
	f.notifyWatchers()
}

func (f *Feed) alreadySeen(saleID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.seen[saleID]
	return ok
}

// insert front-inserts the sale and trims to the cap. The seen set keeps ids
// even after their sales age out, so a late redelivery stays a no-op.
func (f *Feed) insert(sale store.SaleWithLines) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[sale.Sale.ID]; ok {
		return
	}
	f.seen[sale.Sale.ID] = struct{}{}
	f.recent = append([]store.SaleWithLines{sale}, f.recent...)
	if len(f.recent) > f.cap() {
		f.recent = f.recent[:f.cap()]
	}
}

func (f *Feed) refreshToday(ctx context.Context) error {
	now := f.now()
	totals, err := f.Store.SumSales(ctx, f.OwnerID, common.StartOfDay(now), common.EndOfDay(now))
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.today = totals
	f.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	recent := make([]store.SaleWithLines, len(f.recent))
	copy(recent, f.recent)
	return Snapshot{Recent: recent, Today: f.today}
}

// Watch registers for change notifications. The returned cancel func must be
// called when the watcher disconnects. Signals are coalesced: a slow watcher
// sees at least one pending signal, never a backlog.
func (f *Feed) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	if f.watchers == nil {
		f.watchers = make(map[chan struct{}]struct{})
	}
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()
	return ch, func() {
		f.mu.Lock()
		delete(f.watchers, ch)
		f.mu.Unlock()
	}
}

func (f *Feed) notifyWatchers() {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
