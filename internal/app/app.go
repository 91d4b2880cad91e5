// Package app wires configuration into the storage, gateway clients, cart
// and services shared by storefront and storefront-gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/cart"
	"github.com/THE-DEEPDAS/HTT/internal/config"
	"github.com/THE-DEEPDAS/HTT/internal/events"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
	"github.com/THE-DEEPDAS/HTT/internal/service"
	"github.com/THE-DEEPDAS/HTT/internal/session"
	"github.com/THE-DEEPDAS/HTT/internal/storage"
)

// ClientIDKey holds the id this installation tags its order events with.
const ClientIDKey = "clientID"

// OpenStorage is replaced in tests to share one store across invocations.
var OpenStorage = storage.Open

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	ClientID string

	Store        storage.Store
	UserSession  *session.Store
	AdminSession *session.Store
	Client       *gateway.Client
	AdminClient  *gateway.Client
	Cart         *cart.Store

	Auth      *service.AuthService
	Products  *service.ProductService
	Addresses *service.AddressService
	Orders    *service.OrderService
	Checkout  *service.CheckoutService
	Exchange  *service.ExchangeService
	Voice     *service.VoiceService
	Admin     *service.AdminService

	// Relay and Poller are nil unless Kafka brokers are configured.
	Relay  *events.Relay
	Poller *events.Poller

	publisher *events.KafkaPublisher
	closeOnce sync.Once
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	l = logger.OrNop(l)

	kv, err := OpenStorage(ctx, cfg.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	clientID, err := loadClientID(ctx, kv)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	a := &App{
		Config:       cfg,
		Logger:       l,
		ClientID:     clientID,
		Store:        kv,
		UserSession:  session.NewUserStore(kv),
		AdminSession: session.NewAdminStore(kv),
	}

	a.Client, err = gateway.New(cfg.API.BaseURL, a.UserSession, a.gatewayOptions(gateway.RealmUser)...)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("user client: %w", err)
	}
	a.AdminClient, err = gateway.New(cfg.API.BaseURL, a.AdminSession, a.gatewayOptions(gateway.RealmAdmin)...)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("admin client: %w", err)
	}

	a.Cart = cart.NewStore(cart.NewSnapshotPersister(kv), cart.WithLogger(l.Named("cart")))
	if err := a.Cart.Init(ctx); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("init cart: %w", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		outbox := events.NewOutbox(kv)
		a.publisher = events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		a.Relay = events.NewRelay(outbox, a.publisher, cfg.Kafka.RelayInterval, l.Named("relay"))
		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			groupID = "storefront-" + clientID
		}
		a.Poller = events.NewPoller(clientID, a.Cart, a.UserSession, l.Named("poller"), cfg.Kafka.Topic, groupID, cfg.Kafka.Brokers...)
		publisher = outbox
	}

	a.Auth = service.NewAuthService(a.Client, a.AdminClient, a.UserSession, a.AdminSession, l.Named("auth"))
	a.Products = service.NewProductService(a.Client)
	a.Addresses = service.NewAddressService(a.Client)
	a.Orders = service.NewOrderService(a.Client)
	a.Checkout = service.NewCheckoutService(a.Cart, a.Orders, a.UserSession, publisher, clientID, l.Named("checkout"))
	a.Exchange = service.NewExchangeService(a.Client)
	a.Voice = service.NewVoiceService(a.Client)
	a.Admin = service.NewAdminService(a.AdminClient)

	return a, nil
}

func (a *App) gatewayOptions(realm gateway.Realm) []gateway.Option {
	log := a.Logger.Named("gateway")
	opts := []gateway.Option{
		gateway.WithRealm(realm),
		gateway.WithLogger(log),
		gateway.WithTimeout(a.Config.API.Timeout),
		gateway.WithNavigator(gateway.NavigatorFunc(func(ctx context.Context, r gateway.Realm) {
			logger.WithTrace(ctx, log).Info("session ended, login required", zap.String("login_path", r.LoginPath()))
		})),
	}
	if a.Config.API.RefreshDedup {
		opts = append(opts, gateway.WithRefreshDedup())
	}
	if a.Config.API.BreakerFailures > 0 {
		opts = append(opts, gateway.WithCircuitBreaker(a.Config.API.BreakerFailures, a.Config.API.BreakerOpenFor))
	}
	return opts
}

// RunBackground relays queued order events and listens for orders placed by
// other clients until ctx is done. It is a no-op without Kafka.
func (a *App) RunBackground(ctx context.Context) *sync.WaitGroup {
	var wg sync.WaitGroup
	if a.Relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Relay.Run(ctx)
		}()
	}
	if a.Poller != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Poller.Run(ctx)
		}()
	}
	return &wg
}

// FlushEvents sends queued order events once. Short-lived processes call it
// before exiting.
func (a *App) FlushEvents(ctx context.Context) {
	if a.Relay == nil {
		return
	}
	if n, err := a.Relay.Flush(ctx); err != nil {
		a.Logger.Warn("order events left queued", zap.Int("sent", n), zap.Error(err))
	}
}

func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		if a.Poller != nil {
			a.Poller.Close()
		}
		if a.publisher != nil {
			if err := a.publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close publisher: %w", err))
			}
		}
		if err := a.Cart.Teardown(); err != nil {
			errs = append(errs, err)
		}
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	})
	return errors.Join(errs...)
}

func loadClientID(ctx context.Context, kv storage.Store) (string, error) {
	v, err := kv.Get(ctx, ClientIDKey)
	if err == nil && len(v) > 0 {
		return string(v), nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("load client id: %w", err)
	}
	id := uuid.NewString()
	if err := kv.Set(ctx, ClientIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("save client id: %w", err)
	}
	return id, nil
}
