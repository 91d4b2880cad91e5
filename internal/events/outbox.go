package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/logger"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

const outboxKey = "outbox"

// Outbox is a Publisher that only records events in client storage. A Relay
// moves them to the broker later, so checkout never waits on Kafka.
type Outbox struct {
	mu sync.Mutex
	kv storage.Store
}

func NewOutbox(kv storage.Store) *Outbox {
	return &Outbox{kv: kv}
}

func (o *Outbox) Publish(ctx context.Context, e Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load(ctx)
	if err != nil {
		return err
	}
	return o.save(ctx, append(pending, e))
}

func (o *Outbox) Pending(ctx context.Context) ([]Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.load(ctx)
}

// MarkProcessed removes the given events. Unknown ids are ignored.
func (o *Outbox) MarkProcessed(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load(ctx)
	if err != nil {
		return err
	}
	kept := pending[:0]
	for _, e := range pending {
		if !done[e.ID] {
			kept = append(kept, e)
		}
	}
	return o.save(ctx, kept)
}

func (o *Outbox) load(ctx context.Context) ([]Event, error) {
	data, err := o.kv.Get(ctx, outboxKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load outbox: %w", err)
	}
	var pending []Event
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("decode outbox: %w", err)
	}
	return pending, nil
}

func (o *Outbox) save(ctx context.Context, pending []Event) error {
	if len(pending) == 0 {
		if err := o.kv.Delete(ctx, outboxKey); err != nil {
			return fmt.Errorf("clear outbox: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode outbox: %w", err)
	}
	if err := o.kv.Set(ctx, outboxKey, data); err != nil {
		return fmt.Errorf("save outbox: %w", err)
	}
	return nil
}

// Relay drains an Outbox into a Publisher.
type Relay struct {
	outbox    *Outbox
	publisher Publisher
	tick      time.Duration
	logger    *zap.Logger
}

func NewRelay(outbox *Outbox, publisher Publisher, tick time.Duration, l *zap.Logger) *Relay {
	if tick <= 0 {
		tick = time.Second
	}
	return &Relay{outbox: outbox, publisher: publisher, tick: tick, logger: logger.OrNop(l)}
}

func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("outbox flush failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Flush publishes pending events in order and returns how many went out. It
// stops at the first failure so later events never overtake earlier ones.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.outbox.Pending(ctx)
	if err != nil {
		return 0, err
	}

	var published []string
	var publishErr error
	for _, e := range pending {
		if err := r.publisher.Publish(ctx, e); err != nil {
			publishErr = err
			break
		}
		published = append(published, e.ID)
	}

	if err := r.outbox.MarkProcessed(ctx, published...); err != nil {
		return len(published), fmt.Errorf("mark events processed: %w", err)
	}
	if publishErr != nil {
		return len(published), publishErr
	}
	if len(published) > 0 {
		r.logger.Debug("outbox flushed", zap.Int("events", len(published)))
	}
	return len(published), nil
}
