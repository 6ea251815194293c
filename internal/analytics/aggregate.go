package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Placeholder buckets used when a sale carries no line items. Malformed
// historical records still contribute their header total instead of being
// silently dropped.
const (
	UnknownProduct = "Unknown Product"
	OtherCategory  = "Other"
)

// DayRevenue is one calendar day's totals.
type DayRevenue struct {
	Day     string        `json:"day"`
	Count   int           `json:"count"`
	Revenue pricing.Money `json:"revenue"`
}

// HourBucket accumulates sales for one hour of the day (0-23).
type HourBucket struct {
	Hour    int           `json:"hour"`
	Count   int           `json:"count"`
	Revenue pricing.Money `json:"revenue"`
}

// WeekdayBucket accumulates sales for one day of the week, Sunday first.
type WeekdayBucket struct {
	Weekday string        `json:"weekday"`
	Count   int           `json:"count"`
	Revenue pricing.Money `json:"revenue"`
}

// CategoryRevenue groups line totals by product category.
type CategoryRevenue struct {
	Category string        `json:"category"`
	Lines    int           `json:"lines"`
	Revenue  pricing.Money `json:"revenue"`
}

// WorkerStats accumulates per-worker volume and revenue. Revenue sums the
// sale's final total so discounts are reflected; units sum line quantities.
type WorkerStats struct {
	WorkerID   string        `json:"workerId"`
	WorkerName string        `json:"workerName"`
	Sales      int           `json:"sales"`
	UnitsSold  int           `json:"unitsSold"`
	Revenue    pricing.Money `json:"revenue"`
}

// ProductStats accumulates per-product volume and revenue across sale lines.
type ProductStats struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitsSold int           `json:"unitsSold"`
	Revenue   pricing.Money `json:"revenue"`
}

// GrowthReport compares a range's revenue to the equal-length preceding range.
type GrowthReport struct {
	CurrentTotal  pricing.Money `json:"currentTotal"`
	PreviousTotal pricing.Money `json:"previousTotal"`
	GrowthRate    float64       `json:"growthRate"`
}

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// RevenueByDay groups final totals by calendar date in ascending order. Only
// days with sales are emitted.
func RevenueByDay(sales []store.SaleWithLines) []DayRevenue {
	byDay := make(map[string]*DayRevenue)
	for _, s := range sales {
		day := s.Sale.SaleDate.Format(common.DayLayout)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DayRevenue{Day: day}
			byDay[day] = bucket
		}
		bucket.Count++
		bucket.Revenue += s.Sale.FinalTotal
	}
	out := make([]DayRevenue, 0, len(byDay))
	for _, bucket := range byDay {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// RevenueByHour always returns 24 buckets in hour order, empty hours included.
func RevenueByHour(sales []store.SaleWithLines) []HourBucket {
	buckets := make([]HourBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, s := range sales {
		h := s.Sale.SaleDate.Hour()
		buckets[h].Count++
		buckets[h].Revenue += s.Sale.FinalTotal
	}
	return buckets
}

// RevenueByWeekday always returns 7 buckets in Sunday-to-Saturday order.
func RevenueByWeekday(sales []store.SaleWithLines) []WeekdayBucket {
	buckets := make([]WeekdayBucket, 7)
	for i := range buckets {
		buckets[i].Weekday = weekdayNames[i]
	}
	for _, s := range sales {
		d := int(s.Sale.SaleDate.Weekday())
		buckets[d].Count++
		buckets[d].Revenue += s.Sale.FinalTotal
	}
	return buckets
}

// RevenueByCategory groups line totals by product category, with a literal
// "Other" bucket for uncategorised lines. Sales without lines contribute their
// final total to "Other" so dashboards still reconcile with header revenue.
func RevenueByCategory(sales []store.SaleWithLines) []CategoryRevenue {
	order := make([]string, 0)
	byCategory := make(map[string]*CategoryRevenue)
	add := func(category string, revenue pricing.Money, lines int) {
		if category == "" {
			category = OtherCategory
		}
		bucket, ok := byCategory[category]
		if !ok {
			bucket = &CategoryRevenue{Category: category}
			byCategory[category] = bucket
			order = append(order, category)
		}
		bucket.Lines += lines
		bucket.Revenue += revenue
	}
	for _, s := range sales {
		if len(s.Lines) == 0 {
			add(OtherCategory, s.Sale.FinalTotal, 1)
			continue
		}
		for _, ln := range s.Lines {
			add(ln.Category, ln.LineTotal, 1)
		}
	}
	out := make([]CategoryRevenue, 0, len(order))
	for _, category := range order {
		out = append(out, *byCategory[category])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	return out
}

// WorkerPerformance groups sales by worker in first-seen order. Revenue is the
// sum of final totals, never of raw line totals, so discounts are represented.
func WorkerPerformance(sales []store.SaleWithLines) []WorkerStats {
	order := make([]string, 0)
	byWorker := make(map[string]*WorkerStats)
	for _, s := range sales {
		stats, ok := byWorker[s.Sale.WorkerID]
		if !ok {
			stats = &WorkerStats{WorkerID: s.Sale.WorkerID, WorkerName: s.Sale.WorkerName}
			byWorker[s.Sale.WorkerID] = stats
			order = append(order, s.Sale.WorkerID)
		}
		if stats.WorkerName == "" {
			stats.WorkerName = s.Sale.WorkerName
		}
		stats.Sales++
		stats.Revenue += s.Sale.FinalTotal
		for _, ln := range s.Lines {
			stats.UnitsSold += ln.QuantitySold
		}
	}
	out := make([]WorkerStats, 0, len(order))
	for _, id := range order {
		out = append(out, *byWorker[id])
	}
	return out
}

// Leaderboard ranks workers by revenue descending, keeping the top n. Ties
// preserve the first-seen order from WorkerPerformance.
func Leaderboard(sales []store.SaleWithLines, n int) []WorkerStats {
	stats := WorkerPerformance(sales)
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Revenue > stats[j].Revenue })
	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// TopProducts ranks products by line revenue descending, truncated to n.
// Sales without lines surface as a single "Unknown Product" entry.
func TopProducts(sales []store.SaleWithLines, n int) []ProductStats {
	order := make([]string, 0)
	byProduct := make(map[string]*ProductStats)
	add := func(id, name string, units int, revenue pricing.Money) {
		stats, ok := byProduct[id]
		if !ok {
			stats = &ProductStats{ProductID: id, Name: name}
			byProduct[id] = stats
			order = append(order, id)
		}
		if stats.Name == "" {
			stats.Name = name
		}
		stats.UnitsSold += units
		stats.Revenue += revenue
	}
	for _, s := range sales {
		if len(s.Lines) == 0 {
			add("", UnknownProduct, 0, s.Sale.FinalTotal)
			continue
		}
		for _, ln := range s.Lines {
			name := ln.ProductName
			if name == "" {
				name = UnknownProduct
			}
			add(ln.ProductID, name, ln.QuantitySold, ln.LineTotal)
		}
	}
	out := make([]ProductStats, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue > out[j].Revenue })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SumRevenue totals the final amounts of the provided sales.
func SumRevenue(sales []store.SaleWithLines) pricing.Money {
	var total pricing.Money
	for _, s := range sales {
		total += s.Sale.FinalTotal
	}
	return total
}

// Growth computes the period-over-period rate in percent. A zero previous
// total yields exactly 0, never an infinite or undefined rate.
func Growth(currentTotal, previousTotal pricing.Money) GrowthReport {
	report := GrowthReport{CurrentTotal: currentTotal, PreviousTotal: previousTotal}
	if previousTotal > 0 {
		report.GrowthRate = float64(currentTotal-previousTotal) / float64(previousTotal) * 100
	}
	return report
}

// PreviousRange returns the equal-length range immediately preceding
// [start, end]: previousEnd = start, previousStart = start - (end - start).
func PreviousRange(start, end time.Time) (time.Time, time.Time) {
	span := end.Sub(start)
	return start.Add(-span), start
}
