package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

func saleAt(t time.Time, worker, name string, total pricing.Money, lines ...store.SaleLine) store.SaleWithLines {
	return store.SaleWithLines{
		Sale: store.Sale{
			ID:         "sale-" + t.Format("150405"),
			WorkerID:   worker,
			WorkerName: name,
			SaleDate:   t,
			Subtotal:   total,
			FinalTotal: total,
		},
		Lines: lines,
	}
}

func line(productID, name, category string, qty int, total pricing.Money) store.SaleLine {
	return store.SaleLine{ProductID: productID, ProductName: name, Category: category, QuantitySold: qty, LineTotal: total}
}

func TestRevenueByDayAscending(t *testing.T) {
	day2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	day1 := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	out := RevenueByDay([]store.SaleWithLines{
		saleAt(day2, "w1", "Ana", 500),
		saleAt(day1, "w1", "Ana", 1000),
		saleAt(day1, "w2", "Budi", 250),
	})
	require.Len(t, out, 2)
	require.Equal(t, "2026-03-01", out[0].Day)
	require.Equal(t, pricing.Money(1250), out[0].Revenue)
	require.Equal(t, 2, out[0].Count)
	require.Equal(t, "2026-03-02", out[1].Day)
	require.Equal(t, pricing.Money(500), out[1].Revenue)
}

func TestRevenueByHourAlways24Buckets(t *testing.T) {
	out := RevenueByHour(nil)
	require.Len(t, out, 24)
	for i, bucket := range out {
		require.Equal(t, i, bucket.Hour)
		require.Zero(t, bucket.Revenue)
	}

	morning := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	out = RevenueByHour([]store.SaleWithLines{
		saleAt(morning, "w1", "Ana", 700),
		saleAt(morning.Add(10*time.Minute), "w1", "Ana", 300),
	})
	require.Len(t, out, 24)
	require.Equal(t, pricing.Money(1000), out[9].Revenue)
	require.Equal(t, 2, out[9].Count)
}

func TestRevenueByWeekdaySundayFirst(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Sunday, sunday.Weekday())
	out := RevenueByWeekday([]store.SaleWithLines{
		saleAt(sunday, "w1", "Ana", 400),
		saleAt(sunday.AddDate(0, 0, 3), "w1", "Ana", 600),
	})
	require.Len(t, out, 7)
	require.Equal(t, "Sunday", out[0].Weekday)
	require.Equal(t, pricing.Money(400), out[0].Revenue)
	require.Equal(t, "Wednesday", out[3].Weekday)
	require.Equal(t, pricing.Money(600), out[3].Revenue)
	require.Equal(t, "Saturday", out[6].Weekday)
}

func TestRevenueByCategoryOtherFallback(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := RevenueByCategory([]store.SaleWithLines{
		saleAt(at, "w1", "Ana", 1500,
			line("p1", "Coffee", "Drinks", 2, 1000),
			line("p2", "Mystery", "", 1, 500),
		),
		saleAt(at, "w2", "Budi", 900), // headless record, no lines
	})
	byName := map[string]CategoryRevenue{}
	for _, c := range out {
		byName[c.Category] = c
	}
	require.Equal(t, pricing.Money(1000), byName["Drinks"].Revenue)
	require.Equal(t, pricing.Money(1400), byName[OtherCategory].Revenue)
	require.Equal(t, 2, byName[OtherCategory].Lines)
}

func TestWorkerPerformanceUsesFinalTotal(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	discounted := saleAt(at, "w1", "Ana", 0, line("p1", "Coffee", "Drinks", 3, 3000))
	discounted.Sale.Subtotal = 3000
	discounted.Sale.DiscountAmount = 300
	discounted.Sale.FinalTotal = 2700

	out := WorkerPerformance([]store.SaleWithLines{
		discounted,
		saleAt(at, "w2", "Budi", 500, line("p2", "Tea", "Drinks", 1, 500)),
		saleAt(at, "w1", "Ana", 1000, line("p1", "Coffee", "Drinks", 1, 1000)),
	})
	require.Len(t, out, 2)
	require.Equal(t, "w1", out[0].WorkerID)
	require.Equal(t, pricing.Money(3700), out[0].Revenue)
	require.Equal(t, 4, out[0].UnitsSold)
	require.Equal(t, 2, out[0].Sales)
	require.Equal(t, "w2", out[1].WorkerID)
}

func TestLeaderboardTopThreeStableTies(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sales := []store.SaleWithLines{
		saleAt(at, "w1", "Ana", 100),
		saleAt(at, "w2", "Budi", 500),
		saleAt(at, "w3", "Cici", 100),
		saleAt(at, "w4", "Dodi", 300),
	}
	out := Leaderboard(sales, 3)
	require.Len(t, out, 3)
	require.Equal(t, "w2", out[0].WorkerID)
	require.Equal(t, "w4", out[1].WorkerID)
	// w1 ties w3 at 100 but was seen first.
	require.Equal(t, "w1", out[2].WorkerID)
}

func TestTopProductsUnknownFallback(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := TopProducts([]store.SaleWithLines{
		saleAt(at, "w1", "Ana", 2000, line("p1", "Coffee", "Drinks", 2, 2000)),
		saleAt(at, "w1", "Ana", 800), // no lines survived
		saleAt(at, "w2", "Budi", 500, line("p1", "Coffee", "Drinks", 1, 500)),
	}, 10)
	require.Len(t, out, 2)
	require.Equal(t, "p1", out[0].ProductID)
	require.Equal(t, pricing.Money(2500), out[0].Revenue)
	require.Equal(t, 3, out[0].UnitsSold)
	require.Equal(t, UnknownProduct, out[1].Name)
	require.Equal(t, pricing.Money(800), out[1].Revenue)
}

func TestGrowthZeroBaseline(t *testing.T) {
	report := Growth(5000, 0)
	require.Equal(t, float64(0), report.GrowthRate)

	report = Growth(1500, 1000)
	require.InDelta(t, 50.0, report.GrowthRate, 1e-9)

	report = Growth(500, 1000)
	require.InDelta(t, -50.0, report.GrowthRate, 1e-9)
}

func TestPreviousRangeEqualSpan(t *testing.T) {
	start := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	prevStart, prevEnd := PreviousRange(start, end)
	require.Equal(t, start, prevEnd)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), prevStart)
}
