package sales

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// DetailFetcher loads a committed sale with its lines for the post-commit read.
type DetailFetcher interface {
	GetSaleWithLines(ctx context.Context, ownerID, saleID string) (store.SaleWithLines, error)
	ListSalesWithLines(ctx context.Context, ownerID string, from, to time.Time) ([]store.SaleWithLines, error)
}

// Handler exposes the sale commit and read endpoints.
type Handler struct {
	Gateway  Gateway
	Detail   DetailFetcher
	Quoter   Quoter
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// CommitRequest is the wire payload for recording a sale.
type CommitRequest struct {
	WorkerName string        `json:"workerName"`
	Notes      string        `json:"notes"`
	Tendered   *pricing.Money `json:"tendered"`
	Items      []Item        `json:"items" validate:"required,min=1,dive"`
}

// Commit records a sale. On success the committed header is returned together
// with the full detail when the read-back succeeds; a failed read-back is
// reported alongside the sale id so the caller knows not to retry the sale.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sales service not configured", nil)
		return
	}
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return
	}
	workerID, ok := common.WorkerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "worker identity required", nil)
		return
	}
	var payload CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid sale payload", err.Error())
			return
		}
	}

	sale, err := h.Gateway.Commit(r.Context(), CommitInput{
		OwnerID:    ownerID,
		WorkerID:   workerID,
		WorkerName: payload.WorkerName,
		Notes:      payload.Notes,
		Tendered:   payload.Tendered,
		Items:      payload.Items,
	})
	if err != nil {
		h.writeCommitError(w, err)
		return
	}

	response := map[string]any{"sale": sale}
	if h.Detail != nil {
		detail, err := h.Detail.GetSaleWithLines(r.Context(), ownerID, sale.ID)
		if err != nil {
			// Commit already succeeded: distinguish the read failure from a
			// failed sale so the client does not retry and double-sell.
			h.Logger.Error().Err(err).Str("sale_id", sale.ID).Msg("post-commit read-back failed")
			response["readback"] = map[string]any{
				"code":    "COMMIT_READBACK_FAILED",
				"message": "sale committed but detail fetch failed; do not retry the sale",
			}
		} else {
			response["sale"] = detail
		}
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": response})
}

// Get returns one committed sale with lines and worker identity.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok || h.Detail == nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return
	}
	saleID := chi.URLParam(r, "saleId")
	detail, err := h.Detail.GetSaleWithLines(r.Context(), ownerID, saleID)
	if errors.Is(err, store.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "sale not found", nil)
		return
	}
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// List returns the owner's sales for a date range, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok || h.Detail == nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity required", nil)
		return
	}
	from, to, err := common.ParseDayRange(r, 30)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	rows, err := h.Detail.ListSalesWithLines(r.Context(), ownerID, from, to)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (h *Handler) writeCommitError(w http.ResponseWriter, err error) {
	var tenderErr *TenderError
	switch {
	case errors.As(err, &tenderErr):
		// Guarded state, not a persisted failure: the sale was never attempted
		// and the client keeps the cart.
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "tendered amount is below the final total", map[string]any{
			"finalTotal": tenderErr.FinalTotal,
			"tendered":   tenderErr.Tendered,
			"shortfall":  tenderErr.Shortfall,
		})
	case errors.Is(err, ErrInsufficientStock):
		// Single aggregate conflict; the client keeps the cart and may retry
		// with adjusted quantities.
		common.JSONError(w, http.StatusConflict, "INSUFFICIENT_STOCK", "not enough stock to complete the sale", nil)
	case errors.Is(err, ErrUnknownProduct):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "one or more products do not exist", nil)
	case errors.Is(err, ErrEmptySale), errors.Is(err, ErrInvalidItem):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
