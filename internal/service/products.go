package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
)

// DefaultPageSize is large enough that the catalogue usually fits one page.
const DefaultPageSize = 100

type ProductFilter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Category string
	PageSize int
}

func (f ProductFilter) query() url.Values {
	q := url.Values{}
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("page_size", strconv.Itoa(size))
	if f.MinPrice != nil {
		q.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("max_price", f.MaxPrice.String())
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	return q
}

type ProductService struct {
	api API
}

func NewProductService(api API) *ProductService {
	return &ProductService{api: api}
}

// List returns the first page only, sized by the filter.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/products/", f.query(), &raw); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return DecodeList[domain.Product](raw)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d/", id), nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (s *ProductService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.List(ctx, ProductFilter{})
	}

	var raw json.RawMessage
	if err := s.api.Get(ctx, "/products/search/", url.Values{"q": {q}}, &raw); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return DecodeList[domain.Product](raw)
}
