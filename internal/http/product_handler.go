package http

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type ProductHandler struct {
	base
	products *service.ProductService
}

func NewProductHandler(b base, products *service.ProductService) *ProductHandler {
	return &ProductHandler{base: b, products: products}
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"product_name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	BasePrice   string `json:"base_price"`
	Price       string `json:"price"`
	Discounted  bool   `json:"discounted"`
	InStock     bool   `json:"in_stock"`
	ImageURL    string `json:"image_url,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func convertProduct(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		BasePrice:   p.BasePrice.StringFixed(2),
		Price:       p.UnitPrice().StringFixed(2),
		Discounted:  !p.UnitPrice().Equal(p.BasePrice),
		InStock:     p.InStock(),
		ImageURL:    p.ImageURL,
	}
}

// GET /api/v1/products?q=&min_price=&max_price=&category=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	query := r.URL.Query()
	var (
		res []domain.Product
		err error
	)
	if q := query.Get("q"); q != "" {
		res, err = h.products.Search(ctx, q)
	} else {
		filter, ferr := parseProductFilter(query.Get("min_price"), query.Get("max_price"), query.Get("page_size"))
		if ferr != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_filter", ferr.Error())
			return
		}
		filter.Category = query.Get("category")
		res, err = h.products.List(ctx, filter)
	}
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}

	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = convertProduct(p)
	}
	h.respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	id, ok := pathID(r, "product_id")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	p, err := h.products.Get(ctx, id)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, convertProduct(*p))
}

func parseProductFilter(minPrice, maxPrice, pageSize string) (service.ProductFilter, error) {
	var f service.ProductFilter
	if minPrice != "" {
		d, err := decimal.NewFromString(minPrice)
		if err != nil {
			return f, errInvalidParam("min_price")
		}
		f.MinPrice = &d
	}
	if maxPrice != "" {
		d, err := decimal.NewFromString(maxPrice)
		if err != nil {
			return f, errInvalidParam("max_price")
		}
		f.MaxPrice = &d
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, errInvalidParam("min_price")
	}
	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n <= 0 {
			return f, errInvalidParam("page_size")
		}
		f.PageSize = n
	}
	return f, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e)
}
