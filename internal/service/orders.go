package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

type OrderService struct {
	api API
}

func NewOrderService(api API) *OrderService {
	return &OrderService{api: api}
}

// ListAll follows every page of the user's orders.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := CollectAll[domain.Order](ctx, s.api, "/orders/", nil)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := s.api.Get(ctx, fmt.Sprintf("/orders/%d/", id), nil, &o); err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &o, nil
}

func (s *OrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	var o domain.Order
	if err := s.api.Post(ctx, "/orders/", req, &o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &o, nil
}

func (s *OrderService) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, fmt.Sprintf("/orders/%d/items/", orderID), nil, &raw); err != nil {
		return nil, fmt.Errorf("get order %d items: %w", orderID, err)
	}
	return DecodeList[domain.OrderItem](raw)
}

// ReturnItem returns the backend's acknowledgement as raw JSON; its shape is
// not fixed.
func (s *OrderService) ReturnItem(ctx context.Context, orderDetailID int64, reason string) (json.RawMessage, error) {
	var out json.RawMessage
	path := fmt.Sprintf("/order-details/%d/return/", orderDetailID)
	if err := s.api.Post(ctx, path, domain.ReturnRequest{ReturnReason: reason}, &out); err != nil {
		return nil, fmt.Errorf("return item %d: %w", orderDetailID, err)
	}
	return out, nil
}

func (s *OrderService) ExchangeItem(ctx context.Context, orderDetailID int64) (json.RawMessage, error) {
	var out json.RawMessage
	path := fmt.Sprintf("/order-details/%d/exchange/", orderDetailID)
	if err := s.api.Post(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("exchange item %d: %w", orderDetailID, err)
	}
	return out, nil
}
