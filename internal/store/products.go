package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

var (
	// ErrNotFound is returned when a requested row does not exist for the owner.
	ErrNotFound = errors.New("store: not found")
	// ErrInsufficientStock is returned when a stock decrement would take
	// quantity below zero. The check constraint is the last line of defence.
	ErrInsufficientStock = errors.New("store: insufficient stock")
)

const productColumns = `id, owner_id, name, category, product_type, items_per_unit, price_per_unit, quantity, created_at, updated_at`

// ProductInput carries the owner-editable fields of a product.
type ProductInput struct {
	Name         string
	Category     string
	Type         pricing.ProductType
	ItemsPerUnit int
	PricePerUnit pricing.Money
	Quantity     int
}

// CreateProduct inserts a product for the owner and returns the stored row.
func (s *Store) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (Product, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return Product{}, err
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO products (owner_id, name, category, product_type, items_per_unit, price_per_unit, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		oid, in.Name, toText(in.Category), string(in.Type), in.ItemsPerUnit, in.PricePerUnit, in.Quantity)
	return scanProduct(row)
}

// UpdateProduct replaces the editable fields of an owner's product.
func (s *Store) UpdateProduct(ctx context.Context, ownerID, productID string, in ProductInput) (Product, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return Product{}, err
	}
	pid, err := ToUUID(productID)
	if err != nil {
		return Product{}, ErrNotFound
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $3, category = $4, product_type = $5, items_per_unit = $6, price_per_unit = $7, quantity = $8, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+productColumns,
		pid, oid, in.Name, toText(in.Category), string(in.Type), in.ItemsPerUnit, in.PricePerUnit, in.Quantity)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return product, err
}

// DeleteProduct removes an owner's product.
func (s *Store) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return err
	}
	pid, err := ToUUID(productID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2`, pid, oid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProduct fetches a single owner-scoped product.
func (s *Store) GetProduct(ctx context.Context, ownerID, productID string) (Product, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return Product{}, err
	}
	pid, err := ToUUID(productID)
	if err != nil {
		return Product{}, ErrNotFound
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND owner_id = $2`, pid, oid)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return product, err
}

// ListProducts returns the owner's catalog ordered by name.
func (s *Store) ListProducts(ctx context.Context, ownerID string, limit, offset int32) ([]Product, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE owner_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`, oid, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// CountProducts returns the owner's total catalog size.
func (s *Store) CountProducts(ctx context.Context, ownerID string) (int64, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return 0, err
	}
	var total int64
	err = s.Pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE owner_id = $1`, oid).Scan(&total)
	return total, err
}

// LockProductTx loads a product row with FOR UPDATE inside the caller's
// transaction. Callers must lock products in a deterministic order.
func (s *Store) LockProductTx(ctx context.Context, tx pgx.Tx, ownerID, productID string) (Product, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return Product{}, err
	}
	pid, err := ToUUID(productID)
	if err != nil {
		return Product{}, ErrNotFound
	}
	row := tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND owner_id = $2 FOR UPDATE`, pid, oid)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return product, err
}

// DecrementStockTx subtracts sold units from a locked product row. Callers
// hold the row lock, so an untouched row means the stock guard rejected the
// decrement, not that the row is missing.
func (s *Store) DecrementStockTx(ctx context.Context, tx pgx.Tx, productID string, units int) error {
	pid, err := ToUUID(productID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := tx.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2`, pid, units)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return ErrInsufficientStock
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		id, ownerID          pgtype.UUID
		category             pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
		productType          string
		p                    Product
	)
	err := row.Scan(&id, &ownerID, &p.Name, &category, &productType, &p.ItemsPerUnit, &p.PricePerUnit, &p.Quantity, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}
	p.ID = UUIDString(id)
	p.OwnerID = UUIDString(ownerID)
	p.Category = textToString(category)
	p.Type = pricing.ProductType(productType)
	p.CreatedAt = timeFromPG(createdAt)
	p.UpdatedAt = timeFromPG(updatedAt)
	return p, nil
}
