package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/store"
)

func TestWriteCSVFlattensLines(t *testing.T) {
	at := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	sales := []store.SaleWithLines{
		{
			Sale: store.Sale{ID: "s1", WorkerName: "Ana", SaleDate: at, FinalTotal: 2700, Notes: "regular"},
			Lines: []store.SaleLine{
				{ProductName: "Coffee", QuantitySold: 3, UnitPrice: 1000, LineTotal: 3000},
			},
		},
		{
			Sale: store.Sale{ID: "s2", WorkerName: "Budi", SaleDate: at, FinalTotal: 800},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sales))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"date", "product", "quantity", "unit_price", "line_total", "worker", "notes"}, rows[0])
	require.Equal(t, []string{"2026-03-01 14:30:00", "Coffee", "3", "1000", "3000", "Ana", "regular"}, rows[1])
	// Headless sale keeps one row with the header total.
	require.Equal(t, "800", rows[2][4])
	require.Equal(t, "Budi", rows[2][5])
}
