package http

import (
	"net/http"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type CheckoutHandler struct {
	base
	checkout  *service.CheckoutService
	addresses *service.AddressService
}

func NewCheckoutHandler(b base, checkout *service.CheckoutService, addresses *service.AddressService) *CheckoutHandler {
	return &CheckoutHandler{base: b, checkout: checkout, addresses: addresses}
}

type QuoteResponseDTO struct {
	PaymentMethod   domain.PaymentMethod  `json:"payment_method"`
	ShippingMethod  domain.ShippingMethod `json:"shipping_method"`
	ItemCount       int                   `json:"item_count"`
	Subtotal        string                `json:"subtotal"`
	PrepaidDiscount string                `json:"prepaid_discount"`
	Shipping        string                `json:"shipping"`
	Total           string                `json:"total"`
}

type CheckoutResponseDTO struct {
	OrderID int64            `json:"order_id"`
	Order   *domain.Order    `json:"order"`
	Quote   QuoteResponseDTO `json:"quote"`
}

func convertQuote(q service.Quote) QuoteResponseDTO {
	return QuoteResponseDTO{
		PaymentMethod:   q.PaymentMethod,
		ShippingMethod:  q.ShippingMethod,
		ItemCount:       q.ItemCount,
		Subtotal:        q.Subtotal.StringFixed(2),
		PrepaidDiscount: q.PrepaidDiscount.StringFixed(2),
		Shipping:        q.Shipping.StringFixed(2),
		Total:           q.Total.StringFixed(2),
	}
}

// GET /api/v1/checkout/quote?payment_method=&shipping_method=
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quote, err := h.checkout.Quote(
		domain.PaymentMethod(q.Get("payment_method")),
		domain.ShippingMethod(q.Get("shipping_method")),
	)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, convertQuote(quote))
}

// POST /api/v1/checkout
//
// Without a shipping_address the account's default address is used.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req service.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.AddressID == 0 {
		addr, err := h.addresses.Default(ctx)
		if err != nil {
			h.handleServiceError(w, r, gateway.RealmUser, err)
			return
		}
		if addr != nil {
			req.AddressID = addr.ID
		}
	}

	res, err := h.checkout.PlaceOrder(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID: res.Order.ID,
		Order:   res.Order,
		Quote:   convertQuote(res.Quote),
	})
}
