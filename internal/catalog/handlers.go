package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Handler exposes the owner's product endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// ProductRequest is the create/update payload.
type ProductRequest struct {
	Name         string        `json:"name" validate:"required,max=200"`
	Category     string        `json:"category" validate:"max=100"`
	ProductType  string        `json:"productType" validate:"required,oneof=single pair box"`
	ItemsPerUnit int           `json:"itemsPerUnit" validate:"min=0"`
	PricePerUnit pricing.Money `json:"pricePerUnit" validate:"min=0"`
	Quantity     int           `json:"quantity" validate:"min=0"`
}

func (req ProductRequest) input() store.ProductInput {
	return store.ProductInput{
		Name:         req.Name,
		Category:     req.Category,
		Type:         pricing.ProductType(req.ProductType),
		ItemsPerUnit: req.ItemsPerUnit,
		PricePerUnit: req.PricePerUnit,
		Quantity:     req.Quantity,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return req, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return req, false
		}
	}
	return req, true
}

// List handles GET /products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	pageNum, perPage := common.ParsePagination(r, 20)
	page, err := h.Svc.List(r.Context(), ownerID, perPage, (pageNum-1)*perPage)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "could not list products", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": page.Items,
		"meta": common.Pagination{Page: pageNum, PerPage: perPage, TotalItems: page.Total},
	})
}

// Get handles GET /products/{productId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	product, err := h.Svc.Get(r.Context(), ownerID, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Create handles POST /products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.Svc.Create(r.Context(), ownerID, req.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}

// Update handles PUT /products/{productId}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.Svc.Update(r.Context(), ownerID, chi.URLParam(r, "productId"), req.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Delete handles DELETE /products/{productId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := common.OwnerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "VALIDATION_ERROR", "owner not resolved", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), ownerID, chi.URLParam(r, "productId")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	case errors.Is(err, errInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog operation failed", nil)
	}
}
