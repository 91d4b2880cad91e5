package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentDebitCard      PaymentMethod = "Debit Card"
	PaymentPayPal         PaymentMethod = "PayPal"
	PaymentGiftCard       PaymentMethod = "Gift Card"
	PaymentCashOnDelivery PaymentMethod = "COD"
)

// Prepaid reports whether the method is charged before shipping. Prepaid
// orders get the prepaid discount.
func (m PaymentMethod) Prepaid() bool {
	return m != PaymentCashOnDelivery
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentGiftCard, PaymentCashOnDelivery:
		return true
	}
	return false
}

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "Standard"
	ShippingExpress  ShippingMethod = "Express"
	ShippingNextDay  ShippingMethod = "Next-Day"
)

func (m ShippingMethod) Valid() bool {
	switch m {
	case ShippingStandard, ShippingExpress, ShippingNextDay:
		return true
	}
	return false
}

// Cost is the flat shipping fee charged for the method.
func (m ShippingMethod) Cost() decimal.Decimal {
	switch m {
	case ShippingExpress:
		return decimal.NewFromInt(99)
	case ShippingNextDay:
		return decimal.NewFromInt(199)
	default:
		return decimal.Zero
	}
}

type OrderItemRequest struct {
	ProductID     int64  `json:"product"`
	OrderQuantity int    `json:"order_quantity"`
	ProductPrice  string `json:"product_price"`
}

type CreateOrderRequest struct {
	ShippingAddress int64              `json:"shipping_address"`
	PaymentMethod   PaymentMethod      `json:"payment_method"`
	ShippingMethod  ShippingMethod     `json:"shipping_method"`
	Items           []OrderItemRequest `json:"items"`
}

type OrderProduct struct {
	ID   int64  `json:"id"`
	Name string `json:"product_name"`
}

type OrderItem struct {
	ID              int64           `json:"id"`
	Product         OrderProduct    `json:"product"`
	ProductName     string          `json:"product_name,omitempty"`
	OrderQuantity   int             `json:"order_quantity"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	ReturnStatus    string          `json:"return_status,omitempty"`
	ReturnReason    string          `json:"return_reason,omitempty"`
	ReturnDate      *time.Time      `json:"return_date,omitempty"`
	IsExchanged     bool            `json:"is_exchanged,omitempty"`
}

func (i OrderItem) Total() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.OrderQuantity))).Sub(i.DiscountApplied)
}

type Order struct {
	ID              int64          `json:"id"`
	OrderDate       time.Time      `json:"order_date"`
	PaymentMethod   PaymentMethod  `json:"payment_method"`
	ShippingMethod  ShippingMethod `json:"shipping_method"`
	ShippingAddress *Address       `json:"shipping_address,omitempty"`
	Items           []OrderItem    `json:"items,omitempty"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

type ReturnRequest struct {
	ReturnReason string `json:"return_reason"`
}
