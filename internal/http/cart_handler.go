package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/THE-DEEPDAS/HTT/internal/cart"
	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

const maxLineQuantity = 99

type CartHandler struct {
	base
	cart     *cart.Store
	products *service.ProductService
}

func NewCartHandler(b base, store *cart.Store, products *service.ProductService) *CartHandler {
	return &CartHandler{base: b, cart: store, products: products}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"product_name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Subtotal  string    `json:"subtotal"`
	AddedAt   time.Time `json:"added_at"`
}

type CartResponseDTO struct {
	Items []CartLineDTO `json:"items"`
	Count int           `json:"count"`
	Total string        `json:"total"`
	Empty bool          `json:"empty"`
}

// view renders one copy of the lines so items, count and total agree.
func (h *CartHandler) view() CartResponseDTO {
	lines := h.cart.Lines()
	items := make([]CartLineDTO, 0, len(lines))
	count := 0
	total := decimal.Zero
	for _, l := range lines {
		items = append(items, convertCartLine(l))
		count += l.Quantity
		total = total.Add(l.Subtotal())
	}
	return CartResponseDTO{
		Items: items,
		Count: count,
		Total: total.StringFixed(2),
		Empty: len(lines) == 0,
	}
}

func convertCartLine(l domain.CartLine) CartLineDTO {
	return CartLineDTO{
		ProductID: l.ProductID,
		Name:      l.Product.Name,
		ImageURL:  l.Product.ImageURL,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice().StringFixed(2),
		Subtotal:  l.Subtotal().StringFixed(2),
		AddedAt:   l.AddedAt,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.view())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity > maxLineQuantity {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	product, err := h.products.Get(ctx, req.ProductID)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	if !product.InStock() {
		h.respondError(w, http.StatusConflict, "out_of_stock", product.Name+" is out of stock")
		return
	}
	added := max(req.Quantity, 1)
	if existing, ok := h.cart.Line(req.ProductID); ok && existing.Quantity+added > maxLineQuantity {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	h.cart.AddToCart(ctx, *product, req.Quantity)
	h.respondJSON(w, http.StatusCreated, h.view())
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "product_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > maxLineQuantity {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	h.cart.UpdateQuantity(r.Context(), productID, req.Quantity)
	h.respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "product_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	h.cart.RemoveFromCart(r.Context(), productID)
	h.respondJSON(w, http.StatusOK, h.view())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())
	h.respondJSON(w, http.StatusOK, h.view())
}
