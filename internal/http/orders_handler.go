package http

import (
	"net/http"
	"strings"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type OrdersHandler struct {
	base
	orders *service.OrderService
}

func NewOrdersHandler(b base, orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{base: b, orders: orders}
}

type OrderResponseDTO struct {
	domain.Order
	Total string `json:"total"`
}

type ReturnRequestDTO struct {
	Reason string `json:"reason"`
}

func convertOrder(o domain.Order) OrderResponseDTO {
	if o.Items == nil {
		o.Items = make([]domain.OrderItem, 0)
	}
	return OrderResponseDTO{Order: o, Total: o.Total().StringFixed(2)}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	h.respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	orderID, ok := pathID(r, "order_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, convertOrder(*order))
}

// POST /api/v1/orders/items/{detail_id}/return
func (h *OrdersHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	detailID, ok := pathID(r, "detail_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_detail_id", "detail_id must be a positive integer")
		return
	}
	var req ReturnRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		h.respondError(w, http.StatusBadRequest, "missing_reason", "reason is required")
		return
	}

	ack, err := h.orders.ReturnItem(ctx, detailID, req.Reason)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ack)
}

// POST /api/v1/orders/items/{detail_id}/exchange
func (h *OrdersHandler) ExchangeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	detailID, ok := pathID(r, "detail_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_detail_id", "detail_id must be a positive integer")
		return
	}

	ack, err := h.orders.ExchangeItem(ctx, detailID)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ack)
}
