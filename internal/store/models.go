package store

import (
	"time"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Product is a catalog entry owned by a single business owner. Quantity counts
// sellable units on hand and is decremented only by committed sales or owner edits.
type Product struct {
	ID           string              `json:"id"`
	OwnerID      string              `json:"ownerId"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	Type         pricing.ProductType `json:"productType"`
	ItemsPerUnit int                 `json:"itemsPerUnit"`
	PricePerUnit pricing.Money       `json:"pricePerUnit"`
	Quantity     int                 `json:"quantity"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// PricePerItem derives the per-item price from the unit price and product type.
func (p Product) PricePerItem() pricing.Money {
	return pricing.PerItemPrice(p.Type, p.ItemsPerUnit, p.PricePerUnit)
}

// OwnerSettings holds per-owner discount configuration and notification
// preferences. Each notification channel gates on its own enable flag and
// minimum sale amount, mirroring the discount threshold pattern.
type OwnerSettings struct {
	OwnerID             string        `json:"ownerId"`
	DiscountEnabled     bool          `json:"discountEnabled"`
	DiscountThreshold   pricing.Money `json:"discountThreshold"`
	DiscountPercentage  int           `json:"discountPercentage"`
	NotifyBrowserEnable bool          `json:"notifyBrowserEnabled"`
	NotifyBrowserMin    pricing.Money `json:"notifyBrowserMin"`
	NotifySMSEnable     bool          `json:"notifySmsEnabled"`
	NotifySMSMin        pricing.Money `json:"notifySmsMin"`
	NotifyEmailEnable   bool          `json:"notifyEmailEnabled"`
	NotifyEmailMin      pricing.Money `json:"notifyEmailMin"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// Discount converts the settings into the pricing calculator's input shape.
func (s OwnerSettings) Discount() pricing.Discount {
	return pricing.Discount{
		Enabled:    s.DiscountEnabled,
		Threshold:  s.DiscountThreshold,
		Percentage: s.DiscountPercentage,
	}
}

// Sale is one committed checkout transaction. Discount fields are snapshots
// taken at commit time and are never recomputed from later settings.
type Sale struct {
	ID                 string        `json:"id"`
	OwnerID            string        `json:"ownerId"`
	WorkerID           string        `json:"workerId"`
	WorkerName         string        `json:"workerName"`
	SaleDate           time.Time     `json:"saleDate"`
	Subtotal           pricing.Money `json:"subtotal"`
	DiscountPercentage int           `json:"discountPercentage"`
	DiscountAmount     pricing.Money `json:"discountAmount"`
	FinalTotal         pricing.Money `json:"finalTotal"`
	Notes              string        `json:"notes,omitempty"`
}

// SaleLine is one product entry within a sale. UnitPrice and LineTotal are
// price snapshots from commit time.
type SaleLine struct {
	SaleID       string        `json:"saleId"`
	ProductID    string        `json:"productId"`
	ProductName  string        `json:"productName"`
	Category     string        `json:"category"`
	QuantitySold int           `json:"quantitySold"`
	UnitPrice    pricing.Money `json:"unitPrice"`
	LineTotal    pricing.Money `json:"lineTotal"`
}

// SaleWithLines bundles a sale header with its line items for read paths.
// Lines may be empty for malformed historical records; consumers fall back to
// the header's final total.
type SaleWithLines struct {
	Sale  Sale       `json:"sale"`
	Lines []SaleLine `json:"lines"`
}

// SaleEvent is the durable record written by the event bus before publishing.
type SaleEvent struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Topic       string    `json:"topic"`
	AggregateID string    `json:"aggregateId"`
	Payload     []byte    `json:"payload"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// SalesTotals summarises a set of sales, used for the live "today" view.
type SalesTotals struct {
	Count   int           `json:"count"`
	Revenue pricing.Money `json:"revenue"`
}
