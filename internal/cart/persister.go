package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

// SnapshotKey is the storage key holding the serialized cart.
const SnapshotKey = "cart"

var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

// Persister saves and restores the ordered cart lines.
type Persister interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

type SnapshotPersister struct {
	kv storage.Store
}

func NewSnapshotPersister(kv storage.Store) *SnapshotPersister {
	return &SnapshotPersister{kv: kv}
}

// Load returns no lines and no error when nothing has been saved yet.
func (p *SnapshotPersister) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := p.kv.Get(ctx, SnapshotKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return lines, nil
}

func (p *SnapshotPersister) Save(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}
	if err := p.kv.Set(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
