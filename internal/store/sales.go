package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const saleColumns = `id, owner_id, worker_id, worker_name, sale_date, subtotal, discount_percentage, discount_amount, final_total, notes`

// NewSale carries the computed header fields for a sale insert.
type NewSale struct {
	OwnerID            string
	WorkerID           string
	WorkerName         string
	Subtotal           int64
	DiscountPercentage int
	DiscountAmount     int64
	FinalTotal         int64
	Notes              string
}

// NewSaleLine carries a snapshotted line for insertion.
type NewSaleLine struct {
	ProductID    string
	QuantitySold int
	UnitPrice    int64
	LineTotal    int64
}

// InsertSaleTx writes the sale header inside the commit transaction. The sale
// date is assigned by the database at commit time.
func (s *Store) InsertSaleTx(ctx context.Context, tx pgx.Tx, in NewSale) (Sale, error) {
	oid, err := ToUUID(in.OwnerID)
	if err != nil {
		return Sale{}, err
	}
	wid, err := ToUUID(in.WorkerID)
	if err != nil {
		return Sale{}, err
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO sales (owner_id, worker_id, worker_name, subtotal, discount_percentage, discount_amount, final_total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+saleColumns,
		oid, wid, toText(in.WorkerName), in.Subtotal, in.DiscountPercentage, in.DiscountAmount, in.FinalTotal, toText(in.Notes))
	return scanSale(row)
}

// InsertSaleLineTx writes one snapshotted line inside the commit transaction.
func (s *Store) InsertSaleLineTx(ctx context.Context, tx pgx.Tx, saleID string, in NewSaleLine) error {
	sid, err := ToUUID(saleID)
	if err != nil {
		return err
	}
	pid, err := ToUUID(in.ProductID)
	if err != nil {
		return ErrNotFound
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sale_lines (sale_id, product_id, quantity_sold, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)`,
		sid, pid, in.QuantitySold, in.UnitPrice, in.LineTotal)
	return err
}

// GetSaleWithLines loads a committed sale and its lines with product detail.
func (s *Store) GetSaleWithLines(ctx context.Context, ownerID, saleID string) (SaleWithLines, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return SaleWithLines{}, err
	}
	sid, err := ToUUID(saleID)
	if err != nil {
		return SaleWithLines{}, ErrNotFound
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 AND owner_id = $2`, sid, oid)
	sale, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleWithLines{}, ErrNotFound
	}
	if err != nil {
		return SaleWithLines{}, err
	}
	lines, err := s.linesForSales(ctx, []pgtype.UUID{sid})
	if err != nil {
		return SaleWithLines{}, err
	}
	return SaleWithLines{Sale: sale, Lines: lines[sale.ID]}, nil
}

// ListSalesWithLines returns all of the owner's sales in [from, to] with their
// lines, newest first. Used by the analytics and export read paths.
func (s *Store) ListSalesWithLines(ctx context.Context, ownerID string, from, to time.Time) ([]SaleWithLines, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE owner_id = $1 AND sale_date >= $2 AND sale_date <= $3
		ORDER BY sale_date DESC, id`, oid, toTimestamptz(from), toTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var (
		sales []Sale
		ids   []pgtype.UUID
	)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
		id, _ := ToUUID(sale.ID)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	lines, err := s.linesForSales(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]SaleWithLines, 0, len(sales))
	for _, sale := range sales {
		out = append(out, SaleWithLines{Sale: sale, Lines: lines[sale.ID]})
	}
	return out, nil
}

// SumSales totals the owner's sales in [from, to].
func (s *Store) SumSales(ctx context.Context, ownerID string, from, to time.Time) (SalesTotals, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return SalesTotals{}, err
	}
	var totals SalesTotals
	err = s.Pool.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(final_total), 0)
		FROM sales
		WHERE owner_id = $1 AND sale_date >= $2 AND sale_date <= $3`,
		oid, toTimestamptz(from), toTimestamptz(to)).Scan(&totals.Count, &totals.Revenue)
	return totals, err
}

func (s *Store) linesForSales(ctx context.Context, saleIDs []pgtype.UUID) (map[string][]SaleLine, error) {
	out := make(map[string][]SaleLine, len(saleIDs))
	if len(saleIDs) == 0 {
		return out, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT l.sale_id, l.product_id, COALESCE(p.name, ''), COALESCE(p.category, ''), l.quantity_sold, l.unit_price, l.line_total
		FROM sale_lines l
		LEFT JOIN products p ON p.id = l.product_id
		WHERE l.sale_id = ANY($1)
		ORDER BY l.sale_id, l.product_id`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			saleID, productID pgtype.UUID
			line              SaleLine
		)
		if err := rows.Scan(&saleID, &productID, &line.ProductName, &line.Category, &line.QuantitySold, &line.UnitPrice, &line.LineTotal); err != nil {
			return nil, err
		}
		line.SaleID = UUIDString(saleID)
		line.ProductID = UUIDString(productID)
		out[line.SaleID] = append(out[line.SaleID], line)
	}
	return out, rows.Err()
}

func scanSale(row rowScanner) (Sale, error) {
	var (
		id, ownerID, workerID pgtype.UUID
		workerName, notes     pgtype.Text
		saleDate              pgtype.Timestamptz
		sale                  Sale
	)
	err := row.Scan(&id, &ownerID, &workerID, &workerName, &saleDate, &sale.Subtotal, &sale.DiscountPercentage, &sale.DiscountAmount, &sale.FinalTotal, &notes)
	if err != nil {
		return Sale{}, err
	}
	sale.ID = UUIDString(id)
	sale.OwnerID = UUIDString(ownerID)
	sale.WorkerID = UUIDString(workerID)
	sale.WorkerName = textToString(workerName)
	sale.SaleDate = timeFromPG(saleDate)
	sale.Notes = textToString(notes)
	return sale, nil
}
