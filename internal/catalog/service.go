package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Querier defines the product storage the catalog needs.
type Querier interface {
	CreateProduct(ctx context.Context, ownerID string, in store.ProductInput) (store.Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID string, in store.ProductInput) (store.Product, error)
	DeleteProduct(ctx context.Context, ownerID, productID string) error
	GetProduct(ctx context.Context, ownerID, productID string) (store.Product, error)
	ListProducts(ctx context.Context, ownerID string, limit, offset int32) ([]store.Product, error)
	CountProducts(ctx context.Context, ownerID string) (int64, error)
}

// ProductChanged is implemented by the event bus; catalog writes announce
// themselves so connected dashboards can refresh stock figures.
type ProductChanged interface {
	EmitProductChanged(ctx context.Context, ownerID, productID string) error
}

// Service orchestrates owner-scoped product CRUD with a read-through cache.
type Service struct {
	Q            Querier
	Cache        *Cache
	Changes      ProductChanged
	DefaultLimit int
	MaxLimit     int
}

// Page is the cached list payload.
type Page struct {
	Items []store.Product `json:"items"`
	Total int64           `json:"total"`
}

func (s *Service) limits(limit, offset int) (int32, int32) {
	def := s.DefaultLimit
	if def <= 0 {
		def = 20
	}
	max := s.MaxLimit
	if max <= 0 {
		max = 100
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return int32(limit), int32(offset)
}

// List returns a page of the owner's products, cache first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) (Page, error) {
	if s == nil || s.Q == nil {
		return Page{}, errors.New("catalog service not configured")
	}
	lim, off := s.limits(limit, offset)
	key := fmt.Sprintf("catalog:%s:list:%d:%d", ownerID, lim, off)
	var page Page
	if ok, _ := s.Cache.GetJSON(ctx, key, &page); ok {
		return page, nil
	}
	items, err := s.Q.ListProducts(ctx, ownerID, lim, off)
	if err != nil {
		return Page{}, err
	}
	total, err := s.Q.CountProducts(ctx, ownerID)
	if err != nil {
		return Page{}, err
	}
	page = Page{Items: items, Total: total}
	_ = s.Cache.SetJSON(ctx, key, page)
	return page, nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, ownerID, productID string) (store.Product, error) {
	if s == nil || s.Q == nil {
		return store.Product{}, errors.New("catalog service not configured")
	}
	return s.Q.GetProduct(ctx, ownerID, productID)
}

// Create validates and stores a new product, then invalidates cached pages.
func (s *Service) Create(ctx context.Context, ownerID string, in store.ProductInput) (store.Product, error) {
	if s == nil || s.Q == nil {
		return store.Product{}, errors.New("catalog service not configured")
	}
	if err := normalizeInput(&in); err != nil {
		return store.Product{}, err
	}
	product, err := s.Q.CreateProduct(ctx, ownerID, in)
	if err != nil {
		return store.Product{}, err
	}
	s.afterWrite(ctx, ownerID, product.ID)
	return product, nil
}

// Update replaces a product's fields, including a direct quantity edit.
func (s *Service) Update(ctx context.Context, ownerID, productID string, in store.ProductInput) (store.Product, error) {
	if s == nil || s.Q == nil {
		return store.Product{}, errors.New("catalog service not configured")
	}
	if err := normalizeInput(&in); err != nil {
		return store.Product{}, err
	}
	product, err := s.Q.UpdateProduct(ctx, ownerID, productID, in)
	if err != nil {
		return store.Product{}, err
	}
	s.afterWrite(ctx, ownerID, product.ID)
	return product, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, ownerID, productID string) error {
	if s == nil || s.Q == nil {
		return errors.New("catalog service not configured")
	}
	if err := s.Q.DeleteProduct(ctx, ownerID, productID); err != nil {
		return err
	}
	s.afterWrite(ctx, ownerID, productID)
	return nil
}

func (s *Service) afterWrite(ctx context.Context, ownerID, productID string) {
	_ = s.Cache.Invalidate(ctx, ownerID)
	if s.Changes != nil {
		_ = s.Changes.EmitProductChanged(ctx, ownerID, productID)
	}
}

var errInvalidInput = errors.New("invalid product input")

// normalizeInput enforces the per-type items count: singles carry one item per
// unit, pairs two, boxes whatever positive count the owner set.
func normalizeInput(in *store.ProductInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name required", errInvalidInput)
	}
	if in.PricePerUnit < 0 || in.Quantity < 0 {
		return fmt.Errorf("%w: price and quantity must not be negative", errInvalidInput)
	}
	switch in.Type {
	case pricing.TypeSingle:
		in.ItemsPerUnit = 1
	case pricing.TypePair:
		in.ItemsPerUnit = 2
	case pricing.TypeBox:
		if in.ItemsPerUnit <= 0 {
			return fmt.Errorf("%w: box products need a positive items per unit", errInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown product type %q", errInvalidInput, in.Type)
	}
	return nil
}
