package sales

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// QuoteResult previews cart totals before commit. Stock levels are a UX hint
// only; the authoritative check happens inside the commit transaction.
type QuoteResult struct {
	Summary pricing.Summary      `json:"summary"`
	Tender  *pricing.TenderState `json:"tender,omitempty"`
	Lines   []QuoteLine          `json:"lines"`
}

// QuoteLine echoes the priced cart line with its stock availability.
type QuoteLine struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	Qty       int           `json:"qty"`
	UnitPrice pricing.Money `json:"unitPrice"`
	LineTotal pricing.Money `json:"lineTotal"`
	InStock   bool          `json:"inStock"`
	Available int           `json:"available"`
}

// Quoter prices a cart against current catalog and settings.
type Quoter interface {
	Quote(ctx context.Context, ownerID string, items []Item, tendered *pricing.Money) (QuoteResult, error)
}

// QuoteService implements Quoter using plain reads; no locks are taken.
type QuoteService struct {
	Store *store.Store
}

// Quote merges duplicate items, resolves current prices, and computes totals
// under the owner's current discount configuration.
func (s *QuoteService) Quote(ctx context.Context, ownerID string, items []Item, tendered *pricing.Money) (QuoteResult, error) {
	if s == nil || s.Store == nil {
		return QuoteResult{}, errors.New("sales: quote service not configured")
	}
	merged, err := normalizeItems(items)
	if err != nil {
		return QuoteResult{}, err
	}
	settings, err := s.Store.GetOwnerSettings(ctx, ownerID)
	if err != nil {
		return QuoteResult{}, err
	}

	lines := make([]pricing.Line, 0, len(merged))
	quoteLines := make([]QuoteLine, 0, len(merged))
	for _, item := range merged {
		product, err := s.Store.GetProduct(ctx, ownerID, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return QuoteResult{}, ErrUnknownProduct
		}
		if err != nil {
			return QuoteResult{}, err
		}
		ln := pricing.Line{
			ProductID:    product.ID,
			Type:         product.Type,
			ItemsPerUnit: product.ItemsPerUnit,
			UnitPrice:    product.PricePerUnit,
			Qty:          item.Quantity,
		}
		lines = append(lines, ln)
		quoteLines = append(quoteLines, QuoteLine{
			ProductID: product.ID,
			Name:      product.Name,
			Qty:       item.Quantity,
			UnitPrice: product.PricePerUnit,
			LineTotal: pricing.LineTotal(ln),
			InStock:   item.Quantity <= product.Quantity,
			Available: product.Quantity,
		})
	}

	result := QuoteResult{
		Summary: pricing.Compute(lines, settings.Discount()),
		Lines:   quoteLines,
	}
	if tendered != nil {
		state := pricing.Tender(result.Summary, *tendered)
		result.Tender = &state
	}
	return result, nil
}

// QuoteRequest is the wire payload for pricing previews.
type QuoteRequest struct {
	Tendered *pricing.Money `json:"tendered"`
	Items    []Item         `json:"items" validate:"required,min=1,dive"`
}

// Quote prices a cart without committing anything.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Quoter == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return
	}
	var payload QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid quote payload", err.Error())
			return
		}
	}
	result, err := h.Quoter.Quote(r.Context(), ownerID, payload.Items, payload.Tendered)
	if err != nil {
		h.writeCommitError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
