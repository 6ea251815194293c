package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/noah-isme/backend-pos/internal/store"
)

var header = []string{"date", "product", "quantity", "unit_price", "line_total", "worker", "notes"}

// WriteCSV flattens sales into one row per line item. Sales whose lines were
// lost keep a single row carrying the header total, so exported revenue always
// reconciles with the ledger.
func WriteCSV(w io.Writer, sales []store.SaleWithLines) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sales {
		date := s.Sale.SaleDate.Format("2006-01-02 15:04:05")
		if len(s.Lines) == 0 {
			row := []string{date, "", "0", "0", strconv.FormatInt(int64(s.Sale.FinalTotal), 10), s.Sale.WorkerName, s.Sale.Notes}
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, ln := range s.Lines {
			row := []string{
				date,
				ln.ProductName,
				strconv.Itoa(ln.QuantitySold),
				strconv.FormatInt(int64(ln.UnitPrice), 10),
				strconv.FormatInt(int64(ln.LineTotal), 10),
				s.Sale.WorkerName,
				s.Sale.Notes,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
