// Package cart holds the shopping cart on the client. The cart lives only
// here until checkout turns it into an order.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock replaces time.Now for AddedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is the ordered list of cart lines, at most one per product. Every
// mutation is saved through the Persister before it returns; save failures
// are logged and never reach the caller.
type Store struct {
	mu        sync.RWMutex
	lines     []domain.CartLine
	persister Persister
	logger    *zap.Logger
	now       func() time.Time
}

func NewStore(persister Persister, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	return s
}

// Init replaces the in-memory lines with the persisted snapshot. An
// unreadable snapshot leaves the cart empty.
func (s *Store) Init(ctx context.Context) error {
	lines, err := s.persister.Load(ctx)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("discarding unreadable cart snapshot", zap.Error(err))
		lines = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = compact(lines)
	return nil
}

func (s *Store) Teardown() error {
	return nil
}

// AddToCart merges quantity into the product's line, or appends a new line.
// A non-positive quantity counts as 1.
func (s *Store) AddToCart(ctx context.Context, product domain.Product, quantity int) domain.CartLine {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
		s.persist(ctx)
		return s.lines[i]
	}

	line := domain.CartLine{
		ProductID: product.ID,
		Quantity:  quantity,
		Product:   domain.SnapshotOf(product),
		AddedAt:   s.now().UTC(),
	}
	s.lines = append(s.lines, line)
	s.persist(ctx)
	return line
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line;
// an unknown product is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		s.removeAt(i)
	} else {
		s.lines[i].Quantity = quantity
	}
	s.persist(ctx)
}

func (s *Store) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.removeAt(i)
	s.persist(ctx)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx)
}

// RemoveOrdered takes the ordered quantities out of the cart, leaving lines
// added or raised after the order was built.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, o := range ordered {
		i := s.indexOf(o.ProductID)
		if i < 0 {
			continue
		}
		changed = true
		if s.lines[i].Quantity <= o.Quantity {
			s.removeAt(i)
			continue
		}
		s.lines[i].Quantity -= o.Quantity
	}
	if changed {
		s.persist(ctx)
	}
}

// Lines returns a copy in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Line(productID int64) (domain.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i], true
	}
	return domain.CartLine{}, false
}

// Count is the number of units, not the number of lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

func (s *Store) indexOf(productID int64) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
}

// persist must be called with mu held so snapshots are written in mutation order.
// The write ignores caller cancellation so memory and storage never diverge.
func (s *Store) persist(ctx context.Context) {
	if err := s.persister.Save(context.WithoutCancel(ctx), s.lines); err != nil {
		logger.WithTrace(ctx, s.logger).Error("failed to persist cart", zap.Error(err), zap.Int("lines", len(s.lines)))
	}
}

// compact drops invalid lines and merges duplicates from a hand-edited or
// older snapshot, keeping first-seen order.
func compact(lines []domain.CartLine) []domain.CartLine {
	var out []domain.CartLine
	seen := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := seen[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
