package settings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Querier defines the settings storage operations.
type Querier interface {
	GetOwnerSettings(ctx context.Context, ownerID string) (store.OwnerSettings, error)
	UpsertOwnerSettings(ctx context.Context, in store.OwnerSettings) (store.OwnerSettings, error)
}

// Handler exposes the owner settings endpoints. Settings changes affect only
// future commits; past sales keep their snapshots.
type Handler struct {
	Q        Querier
	Validate *validator.Validate
}

// UpdateRequest is the full settings payload. Updates replace the whole
// document; there is no per-field patching.
type UpdateRequest struct {
	DiscountEnabled     bool          `json:"discountEnabled"`
	DiscountThreshold   pricing.Money `json:"discountThreshold" validate:"min=0"`
	DiscountPercentage  int           `json:"discountPercentage" validate:"min=0,max=100"`
	NotifyBrowserEnable bool          `json:"notifyBrowserEnabled"`
	NotifyBrowserMin    pricing.Money `json:"notifyBrowserMin" validate:"min=0"`
	NotifySMSEnable     bool          `json:"notifySmsEnabled"`
	NotifySMSMin        pricing.Money `json:"notifySmsMin" validate:"min=0"`
	NotifyEmailEnable   bool          `json:"notifyEmailEnabled"`
	NotifyEmailMin      pricing.Money `json:"notifyEmailMin" validate:"min=0"`
}

// Get handles GET /settings. Owners with no saved settings get the zero
// document: discount off, all notifications off.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	settings, err := h.Q.GetOwnerSettings(r.Context(), ownerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "could not load settings", nil)
		return
	}
	settings.OwnerID = ownerID
	common.JSON(w, http.StatusOK, map[string]any{"data": settings})
}

// Update handles PUT /settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
	}
	saved, err := h.Q.UpsertOwnerSettings(r.Context(), store.OwnerSettings{
		OwnerID:             ownerID,
		DiscountEnabled:     req.DiscountEnabled,
		DiscountThreshold:   req.DiscountThreshold,
		DiscountPercentage:  req.DiscountPercentage,
		NotifyBrowserEnable: req.NotifyBrowserEnable,
		NotifyBrowserMin:    req.NotifyBrowserMin,
		NotifySMSEnable:     req.NotifySMSEnable,
		NotifySMSMin:        req.NotifySMSMin,
		NotifyEmailEnable:   req.NotifyEmailEnable,
		NotifyEmailMin:      req.NotifyEmailMin,
	})
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "could not save settings", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": saved})
}
