package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

type AddressService struct {
	api API
}

func NewAddressService(api API) *AddressService {
	return &AddressService{api: api}
}

func (s *AddressService) List(ctx context.Context) ([]domain.Address, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/addresses/", nil, &raw); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return DecodeList[domain.Address](raw)
}

func (s *AddressService) Get(ctx context.Context, id int64) (*domain.Address, error) {
	var a domain.Address
	if err := s.api.Get(ctx, addressPath(id), nil, &a); err != nil {
		return nil, fmt.Errorf("get address %d: %w", id, err)
	}
	return &a, nil
}

func (s *AddressService) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	a.ID = 0
	var created domain.Address
	if err := s.api.Post(ctx, "/addresses/", a, &created); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &created, nil
}

func (s *AddressService) Update(ctx context.Context, id int64, a domain.Address) (*domain.Address, error) {
	a.ID = 0
	var updated domain.Address
	if err := s.api.Patch(ctx, addressPath(id), a, &updated); err != nil {
		return nil, fmt.Errorf("update address %d: %w", id, err)
	}
	return &updated, nil
}

func (s *AddressService) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, addressPath(id), nil); err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	return nil
}

func (s *AddressService) SetDefault(ctx context.Context, id int64) error {
	if err := s.api.Post(ctx, fmt.Sprintf("/addresses/%d/set-default/", id), nil, nil); err != nil {
		return fmt.Errorf("set default address %d: %w", id, err)
	}
	return nil
}

// Default returns the first address marked default, or nil when there is none.
func (s *AddressService) Default(ctx context.Context) (*domain.Address, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].IsDefault {
			return &list[i], nil
		}
	}
	return nil, nil
}

func addressPath(id int64) string {
	return fmt.Sprintf("/addresses/%d/", id)
}
