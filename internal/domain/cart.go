package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSnapshot holds the product fields captured when a product is put in
// the cart. It is never re-fetched; the backend re-prices at order creation.
type ProductSnapshot struct {
	ID           int64               `json:"id"`
	Name         string              `json:"product_name"`
	BasePrice    decimal.Decimal     `json:"base_price"`
	DisplayPrice decimal.NullDecimal `json:"display_price"`
	ImageURL     string              `json:"image_url,omitempty"`
}

func SnapshotOf(p Product) ProductSnapshot {
	return ProductSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		BasePrice:    p.BasePrice,
		DisplayPrice: p.DisplayPrice,
		ImageURL:     p.ImageURL,
	}
}

type CartLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
}

func (l CartLine) UnitPrice() decimal.Decimal {
	return unitPrice(l.Product.BasePrice, l.Product.DisplayPrice)
}

// Subtotal multiplies before any rounding so that per-line display values and
// the cart total agree.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}
