package analytics

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Handler exposes the aggregate read endpoints. Malformed input is rejected
// up front; after that each dimension is served independently — a failed load
// logs, counts an aggregation error, and degrades to an empty result so one
// broken view never blanks the whole dashboard.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// load resolves identity and range, writing the validation response itself
// when either is bad (ok=false, nothing further to send). With valid input a
// store failure degrades to an empty slice rather than an error.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, dimension string) ([]store.SaleWithLines, bool) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return nil, false
	}
	from, to, err := common.ParseDayRange(r, h.Svc.DefaultRange)
	if err != nil {
		common.WriteError(w, err)
		return nil, false
	}
	sales, err := h.Svc.Load(r.Context(), ownerID, from, to)
	if err != nil {
		h.Logger.Warn().Err(err).Str("dimension", dimension).Str("owner_id", ownerID).Msg("aggregation failed")
		obs.IncAggregationError(dimension)
		return nil, true
	}
	return sales, true
}

// RevenueByDay returns per-day totals for the requested range.
func (h *Handler) RevenueByDay(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "day")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": RevenueByDay(sales)})
}

// RevenueByHour returns the 24 hour-of-day buckets for the requested range.
func (h *Handler) RevenueByHour(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "hour")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": RevenueByHour(sales)})
}

// RevenueByWeekday returns the 7 weekday buckets for the requested range.
func (h *Handler) RevenueByWeekday(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "weekday")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": RevenueByWeekday(sales)})
}

// RevenueByCategory returns category totals for the requested range.
func (h *Handler) RevenueByCategory(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "category")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": RevenueByCategory(sales)})
}

// Workers returns per-worker performance for the requested range.
func (h *Handler) Workers(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "workers")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": WorkerPerformance(sales)})
}

// Leaderboard returns the top three workers by revenue for the range.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	sales, ok := h.load(w, r, "leaderboard")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Leaderboard(sales, 3)})
}

// TopProducts returns the best selling products for the requested range.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 10)
	if limit <= 0 {
		limit = 10
	}
	sales, ok := h.load(w, r, "top_products")
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": TopProducts(sales, limit)})
}

// Growth compares the requested range against the preceding equal-length one.
func (h *Handler) Growth(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return
	}
	from, to, err := common.ParseDayRange(r, h.Svc.DefaultRange)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	report, err := h.Svc.GrowthFor(r.Context(), ownerID, from, to)
	if err != nil {
		h.Logger.Warn().Err(err).Str("dimension", "growth").Str("owner_id", ownerID).Msg("aggregation failed")
		obs.IncAggregationError("growth")
		common.JSON(w, http.StatusOK, map[string]any{"data": GrowthReport{}})
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}
