package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pos/internal/store"
)

// SalesLoader defines the ledger access required by the aggregator.
type SalesLoader interface {
	ListSalesWithLines(ctx context.Context, ownerID string, from, to time.Time) ([]store.SaleWithLines, error)
}

// Service loads an owner's sales for a range and serves aggregate views over
// them. The raw range load is cached; the aggregations themselves are cheap
// pure passes over the cached slice.
type Service struct {
	Store        SalesLoader
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Load fetches the owner's sales between from and to, consulting the cache
// first. A cache miss reads through to the store and repopulates the entry.
func (s *Service) Load(ctx context.Context, ownerID string, from, to time.Time) ([]store.SaleWithLines, error) {
	if s == nil || s.Store == nil {
		return nil, fmt.Errorf("analytics service not configured")
	}
	// Keyed on the exact instants: growth windows are not day-aligned, and two
	// ranges sharing calendar-day labels must never share a cache entry.
	key := cacheKey("an", ownerID, from.UTC().Format(time.RFC3339Nano), to.UTC().Format(time.RFC3339Nano))
	if sales, ok := s.fromCache(ctx, key); ok {
		return sales, nil
	}
	sales, err := s.Store.ListSalesWithLines(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	s.storeCache(ctx, key, sales)
	return sales, nil
}

// GrowthFor loads the current and the equal-length preceding range and
// reports the period-over-period revenue rate.
func (s *Service) GrowthFor(ctx context.Context, ownerID string, from, to time.Time) (GrowthReport, error) {
	current, err := s.Load(ctx, ownerID, from, to)
	if err != nil {
		return GrowthReport{}, err
	}
	prevFrom, prevTo := PreviousRange(from, to)
	previous, err := s.Load(ctx, ownerID, prevFrom, prevTo)
	if err != nil {
		return GrowthReport{}, err
	}
	return Growth(SumRevenue(current), SumRevenue(previous)), nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]store.SaleWithLines, bool) {
	if s.R == nil || s.TTL <= 0 {
		return nil, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var sales []store.SaleWithLines
	if err := json.Unmarshal(data, &sales); err != nil {
		return nil, false
	}
	return sales, true
}

func (s *Service) storeCache(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
