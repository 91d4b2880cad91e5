package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCount struct {
	ProductName string `json:"product__product_name"`
	Count       int    `json:"count"`
}

type ReasonCount struct {
	ReturnReason string `json:"return_reason"`
	Count        int    `json:"count"`
}

type Analytics struct {
	TotalReturns         int             `json:"total_returns"`
	TotalExchanges       int             `json:"total_exchanges"`
	ReturnRatePercent    float64         `json:"return_rate_percent"`
	ExchangeRatePercent  float64         `json:"exchange_rate_percent"`
	OrdersLast30Days     int             `json:"orders_last_30_days"`
	OrdersLastYear       int             `json:"orders_last_year"`
	RevenueLast30Days    decimal.Decimal `json:"revenue_last_30_days"`
	TopReturnedProducts  []ProductCount  `json:"top_returned_products"`
	TopExchangedProducts []ProductCount  `json:"top_exchanged_products"`
	TopReturnReasons     []ReasonCount   `json:"top_return_reasons"`
}

type ChatSession struct {
	SessionID          string     `json:"session_id"`
	Status             string     `json:"status"`
	RequestType        string     `json:"request_type,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	MessageCount       int        `json:"message_count"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	Messages           []ChatTurn `json:"messages,omitempty"`
}

type ChatTurn struct {
	TurnNumber int    `json:"turn_number"`
	Step       string `json:"step"`
	UserText   string `json:"user_text"`
	BotText    string `json:"bot_text"`
}

type ChatsResponse struct {
	Sessions []ChatSession `json:"sessions"`
}
