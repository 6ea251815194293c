package export

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/store"
)

// SalesLoader is the ledger read the exporter needs.
type SalesLoader interface {
	ListSalesWithLines(ctx context.Context, ownerID string, from, to time.Time) ([]store.SaleWithLines, error)
}

// Handler streams sale exports.
type Handler struct {
	Store        SalesLoader
	DefaultRange int
	Logger       zerolog.Logger
}

// SalesCSV handles GET /export/sales.csv for a date range.
func (h *Handler) SalesCSV(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	from, to, err := common.ParseDayRange(r, h.DefaultRange)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	sales, err := h.Store.ListSalesWithLines(r.Context(), ownerID, from, to)
	if err != nil {
		h.Logger.Error().Err(err).Str("owner_id", ownerID).Msg("export: sales load failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "could not load sales", nil)
		return
	}
	filename := fmt.Sprintf("sales_%s_%s.csv", from.Format(common.DayLayout), to.Format(common.DayLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteCSV(w, sales); err != nil {
		h.Logger.Error().Err(err).Str("owner_id", ownerID).Msg("export: csv write failed")
	}
}
