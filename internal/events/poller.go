package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type CartClearer interface {
	ClearCart(ctx context.Context)
}

// Identity reports who is logged in on this client.
type Identity interface {
	LoadUser(ctx context.Context) (*domain.User, error)
}

const (
	initialReadBackoff = 500 * time.Millisecond
	maxReadBackoff     = 30 * time.Second
)

// Poller empties the local cart when another client of the same account
// places an order.
type Poller struct {
	clientID string
	reader   MessageReader
	cart     CartClearer
	identity Identity
	logger   *zap.Logger

	// backoff doubles on each failed read and resets on success.
	backoff    time.Duration
	minBackoff time.Duration
}

// NewPoller joins groupID at the end of the topic, so orders placed before
// this client started are never replayed.
func NewPoller(clientID string, cart CartClearer, identity Identity, l *zap.Logger, topic, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
		MaxBytes:    10e6, // 10MB
	})
	return NewPollerWithReader(clientID, reader, cart, identity, l)
}

func NewPollerWithReader(clientID string, reader MessageReader, cart CartClearer, identity Identity, l *zap.Logger) *Poller {
	return &Poller{
		clientID:   clientID,
		reader:     reader,
		cart:       cart,
		identity:   identity,
		logger:     logger.OrNop(l),
		minBackoff: initialReadBackoff,
	}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !p.next(ctx) {
			return
		}
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("error closing reader", zap.Error(err))
	}
}

// next handles one message and reports whether the reader is still usable.
func (p *Poller) next(ctx context.Context) bool {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, io.EOF) {
			return false
		}
		p.logger.Warn("error reading message", zap.Error(err), zap.Duration("retry_in", p.nextBackoff()))
		return p.wait(ctx)
	}
	p.backoff = 0
	p.handle(ctx, m)
	return true
}

func (p *Poller) nextBackoff() time.Duration {
	if p.backoff == 0 {
		p.backoff = p.minBackoff
	} else {
		p.backoff = min(p.backoff*2, maxReadBackoff)
	}
	return p.backoff
}

// wait sleeps out the current backoff and reports false if ctx ends first.
func (p *Poller) wait(ctx context.Context) bool {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *Poller) handle(ctx context.Context, m kafka.Message) {
	log := p.logger.With(zap.String("event_id", header(m, headerEventID)), zap.Int64("offset", m.Offset))

	if t := header(m, headerEventType); t != TypeOrderPlaced {
		log.Debug("skipping event", zap.String("event_type", t))
		return
	}

	if p.clientID != "" && header(m, headerSource) == p.clientID {
		log.Debug("skipping own event")
		return
	}

	var placed OrderPlaced
	if err := json.Unmarshal(m.Value, &placed); err != nil {
		log.Warn("error parsing message", zap.Error(err))
		return
	}
	if placed.UserID == 0 {
		log.Warn("missing or invalid user_id")
		return
	}

	user, err := p.identity.LoadUser(ctx)
	if err != nil || user == nil {
		log.Debug("no logged-in user, ignoring order event")
		return
	}
	if user.ID != placed.UserID {
		log.Debug("order event for another user", zap.String("user_id", strconv.FormatInt(placed.UserID, 10)))
		return
	}

	p.cart.ClearCart(ctx)
	log.Info("cart cleared after order on another client", zap.Int64("order_id", placed.OrderID))
}
