package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

func product(id int64, base string) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "product",
		BasePrice:     decimal.RequireFromString(base),
		StockQuantity: 10,
	}
}

func newTestStore(t *testing.T, kv storage.Store, opts ...Option) *Store {
	t.Helper()
	s := NewStore(NewSnapshotPersister(kv), opts...)
	require.NoError(t, s.Init(context.Background()))
	return s
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestAddToCart_MergesSameProduct(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()

	s.AddToCart(ctx, product(1, "100"), 1)
	line := s.AddToCart(ctx, product(1, "100"), 2)

	assert.Equal(t, 3, line.Quantity)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 3, s.Count())
}

func TestAddToCart_ClampsNonPositiveQuantity(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()

	s.AddToCart(ctx, product(1, "10"), 0)
	s.AddToCart(ctx, product(2, "10"), -4)

	assert.Equal(t, 2, s.Count())
}

func TestTotal_UsesDisplayPriceAndExactArithmetic(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()

	discounted := product(2, "59.99")
	discounted.DisplayPrice = decimal.NewNullDecimal(decimal.RequireFromString("49.99"))
	zeroDisplay := product(3, "5")
	zeroDisplay.DisplayPrice = decimal.NewNullDecimal(decimal.Zero)

	s.AddToCart(ctx, product(1, "100"), 2)
	s.AddToCart(ctx, discounted, 3)

	assert.Equal(t, 5, s.Count())
	assert.Equal(t, "349.97", s.Total().StringFixed(2))

	line, ok := s.Line(2)
	require.True(t, ok)
	assert.Equal(t, "149.97", line.Subtotal().StringFixed(2))

	s.AddToCart(ctx, zeroDisplay, 1)
	assert.Equal(t, "354.97", s.Total().StringFixed(2))
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()
	s.AddToCart(ctx, product(1, "10"), 1)
	s.AddToCart(ctx, product(2, "10"), 1)

	s.UpdateQuantity(ctx, 1, 5)
	line, ok := s.Line(1)
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)

	s.UpdateQuantity(ctx, 2, 0)
	_, ok = s.Line(2)
	assert.False(t, ok)

	s.UpdateQuantity(ctx, 99, 3)
	assert.Equal(t, 5, s.Count())
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()
	s.AddToCart(ctx, product(1, "10"), 2)

	s.RemoveFromCart(ctx, 42)
	assert.Equal(t, 2, s.Count())

	s.RemoveFromCart(ctx, 1)
	assert.True(t, s.IsEmpty())
	assert.True(t, s.Total().IsZero())
}

func TestLines_KeepInsertionOrder(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()
	for _, id := range []int64{3, 1, 2} {
		s.AddToCart(ctx, product(id, "1"), 1)
	}
	s.AddToCart(ctx, product(3, "1"), 1)
	s.RemoveFromCart(ctx, 1)

	var ids []int64
	for _, l := range s.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int64{3, 2}, ids)
}

func TestStore_SurvivesReload(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	addedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	first := newTestStore(t, kv, WithClock(func() time.Time { return addedAt }))
	first.AddToCart(ctx, product(1, "100"), 2)
	first.AddToCart(ctx, product(2, "49.99"), 3)
	require.NoError(t, first.Teardown())

	second := newTestStore(t, kv)
	assert.Equal(t, first.Lines(), second.Lines())
	assert.Equal(t, "349.97", second.Total().StringFixed(2))
	assert.Equal(t, addedAt, second.Lines()[0].AddedAt)

	second.ClearCart(ctx)
	third := newTestStore(t, kv)
	assert.True(t, third.IsEmpty())
}

func TestInit_CorruptSnapshotStartsEmpty(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, SnapshotKey, []byte("{not json")))

	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestStore(t, kv, WithLogger(zap.New(core)))

	assert.True(t, s.IsEmpty())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "discarding unreadable cart snapshot", logs.All()[0].Message)
}

func TestInit_MergesDuplicateLines(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, SnapshotKey, []byte(`[
		{"product_id":1,"quantity":1,"product":{"id":1,"product_name":"a","base_price":"10"}},
		{"product_id":2,"quantity":0,"product":{"id":2,"product_name":"b","base_price":"10"}},
		{"product_id":1,"quantity":2,"product":{"id":1,"product_name":"a","base_price":"10"}}
	]`)))

	s := newTestStore(t, kv)
	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 3, s.Count())
}

// cancelAwareStore fails writes whose context is done, like the network
// backends do.
type cancelAwareStore struct {
	storage.Store
}

func (s cancelAwareStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Set(ctx, key, value)
}

func TestMutations_PersistDespiteCanceledContext(t *testing.T) {
	kv := cancelAwareStore{storage.NewMemoryStore()}
	s := newTestStore(t, kv)
	s.AddToCart(context.Background(), product(1, "10"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.UpdateQuantity(ctx, 1, 3)
	s.AddToCart(ctx, product(2, "5"), 1)

	reloaded := newTestStore(t, kv)
	require.Len(t, reloaded.Lines(), 2)
	line, ok := reloaded.Line(1)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
}

func TestRemoveOrdered_KeepsLinesAddedLater(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv)
	ctx := context.Background()

	s.AddToCart(ctx, product(1, "10"), 2)
	s.AddToCart(ctx, product(2, "10"), 1)
	ordered := s.Lines()

	s.AddToCart(ctx, product(1, "10"), 1)
	s.AddToCart(ctx, product(3, "10"), 4)
	s.RemoveOrdered(ctx, ordered)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(3), lines[1].ProductID)
	assert.Equal(t, 4, lines[1].Quantity)

	reloaded := newTestStore(t, kv)
	assert.Equal(t, 5, reloaded.Count())
}

func TestMutations_PersistenceFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := newTestStore(t, failingStore{storage.NewMemoryStore()}, WithLogger(zap.New(core)))
	ctx := context.Background()

	line := s.AddToCart(ctx, product(1, "10"), 2)

	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 1, logs.FilterMessage("failed to persist cart").Len())
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(ctx, product(1, "1.10"), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())
	assert.Equal(t, "55.00", s.Total().StringFixed(2))

	reloaded := newTestStore(t, s.persister.(*SnapshotPersister).kv)
	assert.Equal(t, 50, reloaded.Count())
}
