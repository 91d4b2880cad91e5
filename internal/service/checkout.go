package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/events"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

var (
	prepaidDiscountRate = decimal.RequireFromString("0.05")
	prepaidMultiplier   = decimal.RequireFromString("0.95")
)

// Cart is the part of the cart store checkout reads and empties.
type Cart interface {
	Lines() []domain.CartLine
	RemoveOrdered(ctx context.Context, ordered []domain.CartLine)
}

type Identity interface {
	LoadUser(ctx context.Context) (*domain.User, error)
}

type Quote struct {
	PaymentMethod   domain.PaymentMethod  `json:"payment_method"`
	ShippingMethod  domain.ShippingMethod `json:"shipping_method"`
	ItemCount       int                   `json:"item_count"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	PrepaidDiscount decimal.Decimal       `json:"prepaid_discount"`
	Shipping        decimal.Decimal       `json:"shipping"`
	Total           decimal.Decimal       `json:"total"`
}

type CheckoutRequest struct {
	AddressID      int64                 `json:"shipping_address"`
	PaymentMethod  domain.PaymentMethod  `json:"payment_method"`
	ShippingMethod domain.ShippingMethod `json:"shipping_method"`
}

type CheckoutResult struct {
	Order *domain.Order `json:"order"`
	Quote Quote         `json:"quote"`
}

type CheckoutService struct {
	cart      Cart
	orders    *OrderService
	identity  Identity
	publisher events.Publisher
	source    string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService publishes order events tagged with source, the id of
// this client. A nil publisher disables events.
func NewCheckoutService(cart Cart, orders *OrderService, identity Identity, publisher events.Publisher, source string, l *zap.Logger) *CheckoutService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CheckoutService{
		cart:      cart,
		orders:    orders,
		identity:  identity,
		publisher: publisher,
		source:    source,
		logger:    logger.OrNop(l),
		now:       time.Now,
	}
}

// Quote prices the current cart. Empty methods default to Credit Card and
// Standard shipping.
func (s *CheckoutService) Quote(payment domain.PaymentMethod, shipping domain.ShippingMethod) (Quote, error) {
	payment, shipping, err := normalizeMethods(payment, shipping)
	if err != nil {
		return Quote{}, err
	}
	return quoteLines(s.cart.Lines(), payment, shipping), nil
}

// quoteLines prices one snapshot of the cart so the order and its quote
// agree even while the cart changes.
func quoteLines(lines []domain.CartLine, payment domain.PaymentMethod, shipping domain.ShippingMethod) Quote {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
		count += l.Quantity
	}

	discount := decimal.Zero
	if payment.Prepaid() {
		discount = subtotal.Mul(prepaidDiscountRate).Round(2)
	}
	fee := shipping.Cost()

	return Quote{
		PaymentMethod:   payment,
		ShippingMethod:  shipping,
		ItemCount:       count,
		Subtotal:        subtotal,
		PrepaidDiscount: discount,
		Shipping:        fee,
		Total:           subtotal.Sub(discount).Add(fee),
	}
}

// PlaceOrder turns the cart into an order. Once the backend accepts it the
// ordered quantities leave the cart; lines added meanwhile stay.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	payment, shipping, err := normalizeMethods(req.PaymentMethod, req.ShippingMethod)
	if err != nil {
		return nil, err
	}
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if req.AddressID <= 0 {
		return nil, ErrAddressRequired
	}

	quote := quoteLines(lines, payment, shipping)

	order, err := s.orders.Create(ctx, BuildOrderRequest(lines, req.AddressID, payment, shipping))
	if err != nil {
		return nil, err
	}
	s.cart.RemoveOrdered(ctx, lines)

	log := logger.WithTrace(ctx, s.logger).With(zap.Int64("order_id", order.ID))
	log.Info("order placed", zap.String("total", quote.Total.StringFixed(2)))
	s.publishPlaced(ctx, log, order, quote)

	return &CheckoutResult{Order: order, Quote: quote}, nil
}

// BuildOrderRequest prices each line at its unit price, less the prepaid
// discount, fixed to two decimals.
func BuildOrderRequest(lines []domain.CartLine, addressID int64, payment domain.PaymentMethod, shipping domain.ShippingMethod) domain.CreateOrderRequest {
	multiplier := decimal.NewFromInt(1)
	if payment.Prepaid() {
		multiplier = prepaidMultiplier
	}

	items := make([]domain.OrderItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItemRequest{
			ProductID:     l.ProductID,
			OrderQuantity: l.Quantity,
			ProductPrice:  l.UnitPrice().Mul(multiplier).StringFixed(2),
		})
	}
	return domain.CreateOrderRequest{
		ShippingAddress: addressID,
		PaymentMethod:   payment,
		ShippingMethod:  shipping,
		Items:           items,
	}
}

func (s *CheckoutService) publishPlaced(ctx context.Context, log *zap.Logger, order *domain.Order, quote Quote) {
	user, err := s.identity.LoadUser(ctx)
	if err != nil || user == nil {
		log.Debug("no cached user, skipping order event")
		return
	}

	e, err := events.NewOrderPlaced(s.source, events.OrderPlaced{
		OrderID:        order.ID,
		UserID:         user.ID,
		Total:          quote.Total,
		ItemCount:      quote.ItemCount,
		PaymentMethod:  string(quote.PaymentMethod),
		ShippingMethod: string(quote.ShippingMethod),
		PlacedAt:       s.now().UTC(),
	})
	if err != nil {
		log.Warn("failed to build order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Warn("failed to publish order event", zap.Error(err))
	}
}

func normalizeMethods(payment domain.PaymentMethod, shipping domain.ShippingMethod) (domain.PaymentMethod, domain.ShippingMethod, error) {
	if payment == "" {
		payment = domain.PaymentCreditCard
	}
	if shipping == "" {
		shipping = domain.ShippingStandard
	}
	if !payment.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, payment)
	}
	if !shipping.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidShippingMethod, shipping)
	}
	return payment, shipping, nil
}
