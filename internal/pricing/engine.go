package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// ProductType distinguishes how a product is sold: as a single item, a pair, or a box.
type ProductType string

const (
	TypeSingle ProductType = "single"
	TypePair   ProductType = "pair"
	TypeBox    ProductType = "box"
)

// Line describes one cart entry used for pricing calculation. UnitPrice is the
// price of one sellable unit (one item, one pair, or one whole box).
type Line struct {
	ProductID    string
	Type         ProductType
	ItemsPerUnit int
	UnitPrice    Money
	Qty          int
}

// Discount mirrors the owner's discount configuration at pricing time.
type Discount struct {
	Enabled    bool
	Threshold  Money
	Percentage int
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal           Money
	DiscountPercentage int
	DiscountAmount     Money
	FinalTotal         Money
}

// TenderState reports whether a tendered amount covers the final total.
type TenderState struct {
	Tendered   Money
	Change     Money
	Shortfall  Money
	Sufficient bool
}

// PerItemPrice derives the effective price of one item inside a sellable unit.
// Pairs split the unit price in two, boxes divide by the box size.
func PerItemPrice(t ProductType, itemsPerUnit int, unitPrice Money) Money {
	switch t {
	case TypePair:
		return unitPrice / 2
	case TypeBox:
		if itemsPerUnit < 1 {
			itemsPerUnit = 1
		}
		return unitPrice / Money(itemsPerUnit)
	default:
		return unitPrice
	}
}

// Compute calculates cart totals. The line charge is always quantity times the
// unit price regardless of product type; the discount is a flat percentage off
// the subtotal, applied only when enabled and the subtotal meets the threshold.
func Compute(lines []Line, discount Discount) Summary {
	var subtotal Money
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		subtotal += LineTotal(ln)
	}
	pct := 0
	var amount Money
	if discount.Enabled && discount.Percentage > 0 && subtotal >= discount.Threshold {
		pct = discount.Percentage
		if pct > 100 {
			pct = 100
		}
		amount = subtotal * Money(pct) / 100
	}
	return Summary{
		Subtotal:           subtotal,
		DiscountPercentage: pct,
		DiscountAmount:     amount,
		FinalTotal:         subtotal - amount,
	}
}

// LineTotal returns the charge for a single cart line.
func LineTotal(ln Line) Money {
	if ln.Qty <= 0 {
		return 0
	}
	return ln.UnitPrice * Money(ln.Qty)
}

// Tender evaluates a tendered cash amount against the computed total. An
// insufficient amount is a guarded state that blocks commit, not an error.
func Tender(summary Summary, tendered Money) TenderState {
	state := TenderState{Tendered: tendered}
	if tendered >= summary.FinalTotal {
		state.Sufficient = true
		state.Change = tendered - summary.FinalTotal
		return state
	}
	state.Shortfall = summary.FinalTotal - tendered
	return state
}

// MergeLines collapses duplicate products into single lines by summing their
// quantities, preserving first-seen order.
func MergeLines(lines []Line) []Line {
	merged := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, ln := range lines {
		if pos, ok := index[ln.ProductID]; ok && ln.ProductID != "" {
			merged[pos].Qty += ln.Qty
			continue
		}
		index[ln.ProductID] = len(merged)
		merged = append(merged, ln)
	}
	return merged
}
