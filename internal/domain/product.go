package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID              int64               `json:"id"`
	Name            string              `json:"product_name"`
	Description     string              `json:"description,omitempty"`
	Category        string              `json:"category,omitempty"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	DisplayPrice    decimal.NullDecimal `json:"display_price"`
	IsPriceAdjusted bool                `json:"is_price_adjusted,omitempty"`
	StockQuantity   int                 `json:"stock_quantity"`
	ImageURL        string              `json:"image_url,omitempty"`
}

// UnitPrice is the price a customer pays for one unit: the discount-adjusted
// display price when the backend supplies one, the base price otherwise.
func (p Product) UnitPrice() decimal.Decimal {
	return unitPrice(p.BasePrice, p.DisplayPrice)
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

func unitPrice(base decimal.Decimal, display decimal.NullDecimal) decimal.Decimal {
	if display.Valid && !display.Decimal.IsZero() {
		return display.Decimal
	}
	return base
}
