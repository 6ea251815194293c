package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Sentinel errors surfaced by the commit gateway. The whole sale fails as one
// unit; no per-line detail is reported.
var (
	ErrEmptySale         = errors.New("sales: sale has no items")
	ErrInvalidItem       = errors.New("sales: item quantity must be at least 1")
	ErrUnknownProduct    = errors.New("sales: unknown product")
	ErrInsufficientStock = errors.New("sales: insufficient stock")
)

// Item is one requested line of a sale: a product and how many units to sell.
type Item struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CommitInput carries everything the gateway needs to record a sale. A nil
// Tendered means no cash was counted (e.g. card payment) and skips the guard.
type CommitInput struct {
	OwnerID    string
	WorkerID   string
	WorkerName string
	Notes      string
	Tendered   *pricing.Money
	Items      []Item
}

// TenderError blocks a commit whose tendered amount does not cover the
// authoritative final total. Nothing is persisted; the cart is intact.
type TenderError struct {
	FinalTotal pricing.Money
	Tendered   pricing.Money
	Shortfall  pricing.Money
}

func (e *TenderError) Error() string {
	return fmt.Sprintf("sales: tendered %d is short of final total %d by %d", e.Tendered, e.FinalTotal, e.Shortfall)
}

// Gateway is the commit contract: decrement stock per line, insert the sale
// header and lines, all in one atomic unit.
type Gateway interface {
	Commit(ctx context.Context, in CommitInput) (store.Sale, error)
}

// Service implements Gateway over a single Postgres transaction. Stock is
// re-validated under row locks inside the transaction, independent of any
// client-side check, so two workers cannot both sell the last unit.
type Service struct {
	Store  *store.Store
	Events *events.Bus
}

// Commit atomically records the sale. Either every stock decrement and every
// insert succeeds, or nothing is persisted.
func (s *Service) Commit(ctx context.Context, in CommitInput) (store.Sale, error) {
	if s == nil || s.Store == nil {
		return store.Sale{}, errors.New("sales: service not configured")
	}
	items, err := normalizeItems(in.Items)
	if err != nil {
		return store.Sale{}, err
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return store.Sale{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	settings, err := s.Store.GetOwnerSettingsTx(ctx, tx, in.OwnerID)
	if err != nil {
		return store.Sale{}, err
	}

	// Lock in sorted product order so concurrent multi-line commits cannot
	// deadlock each other.
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	products := make(map[string]store.Product, len(sorted))
	for _, item := range sorted {
		product, err := s.Store.LockProductTx(ctx, tx, in.OwnerID, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return store.Sale{}, ErrUnknownProduct
		}
		if err != nil {
			return store.Sale{}, err
		}
		if item.Quantity > product.Quantity {
			obs.IncSaleCommit("conflict")
			return store.Sale{}, ErrInsufficientStock
		}
		products[item.ProductID] = product
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		lines = append(lines, pricing.Line{
			ProductID:    product.ID,
			Type:         product.Type,
			ItemsPerUnit: product.ItemsPerUnit,
			UnitPrice:    product.PricePerUnit,
			Qty:          item.Quantity,
		})
	}
	summary := pricing.Compute(lines, settings.Discount())

	// Tender is checked against the total priced under the row locks, not the
	// client's stale view. A shortfall aborts before anything is written.
	if in.Tendered != nil {
		if state := pricing.Tender(summary, *in.Tendered); !state.Sufficient {
			obs.IncSaleCommit("tender_short")
			return store.Sale{}, &TenderError{
				FinalTotal: summary.FinalTotal,
				Tendered:   *in.Tendered,
				Shortfall:  state.Shortfall,
			}
		}
	}

	sale, err := s.Store.InsertSaleTx(ctx, tx, store.NewSale{
		OwnerID:            in.OwnerID,
		WorkerID:           in.WorkerID,
		WorkerName:         in.WorkerName,
		Subtotal:           summary.Subtotal,
		DiscountPercentage: summary.DiscountPercentage,
		DiscountAmount:     summary.DiscountAmount,
		FinalTotal:         summary.FinalTotal,
		Notes:              in.Notes,
	})
	if err != nil {
		return store.Sale{}, err
	}
	for _, ln := range lines {
		if err := s.Store.InsertSaleLineTx(ctx, tx, sale.ID, store.NewSaleLine{
			ProductID:    ln.ProductID,
			QuantitySold: ln.Qty,
			UnitPrice:    ln.UnitPrice,
			LineTotal:    pricing.LineTotal(ln),
		}); err != nil {
			return store.Sale{}, err
		}
		if err := s.Store.DecrementStockTx(ctx, tx, ln.ProductID, ln.Qty); err != nil {
			if errors.Is(err, store.ErrInsufficientStock) || errors.Is(err, store.ErrNotFound) {
				obs.IncSaleCommit("conflict")
				return store.Sale{}, ErrInsufficientStock
			}
			return store.Sale{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return store.Sale{}, err
	}
	obs.IncSaleCommit("committed")
	obs.AddSaleRevenue(sale.FinalTotal)

	if s.Events != nil {
		payload := map[string]any{
			"saleId":     sale.ID,
			"workerId":   sale.WorkerID,
			"finalTotal": sale.FinalTotal,
		}
		_, _ = s.Events.Emit(ctx, sale.OwnerID, events.TopicSaleCommitted, sale.ID, payload)
	}
	return sale, nil
}

func normalizeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrEmptySale
	}
	merged := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			return nil, fmt.Errorf("product %q: %w", item.ProductID, ErrInvalidItem)
		}
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
