package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

type fakeReader struct {
	mu    sync.Mutex
	sales map[string]store.SaleWithLines
	sums  int
}

func (f *fakeReader) GetSaleWithLines(ctx context.Context, ownerID, saleID string) (store.SaleWithLines, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale, ok := f.sales[saleID]
	if !ok {
		return store.SaleWithLines{}, store.ErrNotFound
	}
	return sale, nil
}

func (f *fakeReader) SumSales(ctx context.Context, ownerID string, from, to time.Time) (store.SalesTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sums++
	var totals store.SalesTotals
	for _, s := range f.sales {
		totals.Count++
		totals.Revenue += s.Sale.FinalTotal
	}
	return totals, nil
}

func (f *fakeReader) add(saleID string, total pricing.Money) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales[saleID] = store.SaleWithLines{Sale: store.Sale{ID: saleID, FinalTotal: total}}
}

func publishCommitted(t *testing.T, client *redis.Client, ownerID, saleID string) {
	t.Helper()
	data, err := json.Marshal(events.Envelope{
		EventID:     "evt-" + saleID,
		Topic:       events.TopicSaleCommitted,
		AggregateID: saleID,
	})
	require.NoError(t, err)
	require.NoError(t, client.Publish(context.Background(), events.ChannelFor(ownerID), data).Err())
}

func startFeed(t *testing.T, reader *fakeReader, capSize int) (*Feed, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	feed := &Feed{OwnerID: "owner-1", R: client, Store: reader, RecentCap: capSize}
	require.NoError(t, feed.Start(context.Background()))
	t.Cleanup(feed.Stop)
	return feed, client
}

func TestFeedIngestsCommittedSales(t *testing.T) {
	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	feed, client := startFeed(t, reader, 10)

	reader.add("sale-1", 2700)
	publishCommitted(t, client, "owner-1", "sale-1")

	require.Eventually(t, func() bool {
		snap := feed.Snapshot()
		return len(snap.Recent) == 1 && snap.Today.Revenue == 2700
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFeedDuplicateDeliveryDoesNotDoubleCount(t *testing.T) {
	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	feed, client := startFeed(t, reader, 10)

	reader.add("sale-1", 1000)
	publishCommitted(t, client, "owner-1", "sale-1")
	publishCommitted(t, client, "owner-1", "sale-1")
	reader.add("sale-2", 500)
	publishCommitted(t, client, "owner-1", "sale-2")

	require.Eventually(t, func() bool {
		return len(feed.Snapshot().Recent) == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Give the duplicate time to arrive; the list must stay at two entries and
	// totals must match the store, not the delivery count.
	time.Sleep(50 * time.Millisecond)
	snap := feed.Snapshot()
	require.Len(t, snap.Recent, 2)
	require.Equal(t, 2, snap.Today.Count)
	require.Equal(t, pricing.Money(1500), snap.Today.Revenue)
	require.Equal(t, "sale-2", snap.Recent[0].Sale.ID)
}

func TestFeedRecentListBounded(t *testing.T) {
	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	feed, client := startFeed(t, reader, 3)

	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("sale-%d", i)
		reader.add(id, 100)
		publishCommitted(t, client, "owner-1", id)
	}

	require.Eventually(t, func() bool {
		snap := feed.Snapshot()
		return len(snap.Recent) == 3 && snap.Recent[0].Sale.ID == "sale-5"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFeedIgnoresOtherTopics(t *testing.T) {
	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	feed, client := startFeed(t, reader, 10)

	data, err := json.Marshal(events.Envelope{EventID: "evt-x", Topic: events.TopicProductChanged, AggregateID: "p1"})
	require.NoError(t, err)
	require.NoError(t, client.Publish(context.Background(), events.ChannelFor("owner-1"), data).Err())

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, feed.Snapshot().Recent)
}

func TestStartSubscribeFailureCleansUp(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	feed := &Feed{OwnerID: "owner-1", R: client, Store: reader}
	require.Error(t, feed.Start(context.Background()))

	stopped := make(chan struct{})
	go func() {
		feed.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after failed Start")
	}
}

func TestHubReferenceCounting(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reader := &fakeReader{sales: map[string]store.SaleWithLines{}}
	hub := &Hub{R: client, Store: reader}

	first, err := hub.Acquire(context.Background(), "owner-1")
	require.NoError(t, err)
	second, err := hub.Acquire(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Same(t, first, second)

	hub.Release("owner-1")
	hub.mu.Lock()
	_, stillThere := hub.feeds["owner-1"]
	hub.mu.Unlock()
	require.True(t, stillThere)

	hub.Release("owner-1")
	hub.mu.Lock()
	_, stillThere = hub.feeds["owner-1"]
	hub.mu.Unlock()
	require.False(t, stillThere)
}
