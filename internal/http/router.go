// Package http is the backend-for-frontend API served by storefront-gateway.
// It owns one cart and one credential pair per realm on behalf of a UI.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/cart"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type Services struct {
	Cart      *cart.Store
	Auth      *service.AuthService
	Products  *service.ProductService
	Addresses *service.AddressService
	Orders    *service.OrderService
	Checkout  *service.CheckoutService
	Exchange  *service.ExchangeService
	Voice     *service.VoiceService
	Admin     *service.AdminService
}

type RouterConfig struct {
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	rs := responder{logger: logger.OrNop(cfg.Logger)}
	b := base{responder: rs, timeout: cfg.RequestTimeout}

	cartHandler := NewCartHandler(b, svc.Cart, svc.Products)
	productHandler := NewProductHandler(b, svc.Products)
	checkoutHandler := NewCheckoutHandler(b, svc.Checkout, svc.Addresses)
	ordersHandler := NewOrdersHandler(b, svc.Orders)
	exchangeHandler := NewExchangeHandler(b, svc.Exchange)
	addressHandler := NewAddressHandler(b, svc.Addresses)
	authHandler := NewAuthHandler(b, svc.Auth)
	adminHandler := NewAdminHandler(b, svc.Admin)
	voiceHandler := NewVoiceHandler(b, svc.Voice)

	requireUser := RequireSession(svc.Auth, gateway.RealmUser, rs)
	requireAdmin := RequireSession(svc.Auth, gateway.RealmAdmin, rs)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{product_id}", productHandler.Get)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.With(requireUser).Get("/user", authHandler.GetUser)
			r.With(requireUser).Patch("/user", authHandler.UpdateUser)
			r.Post("/admin/login", authHandler.AdminLogin)
			r.Post("/admin/logout", authHandler.AdminLogout)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/quote", checkoutHandler.Quote)
			r.With(requireUser).Post("/", checkoutHandler.PlaceOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{order_id}", ordersHandler.GetOrder)
				r.Post("/items/{detail_id}/return", ordersHandler.ReturnItem)
				r.Post("/items/{detail_id}/exchange", ordersHandler.ExchangeItem)
			})

			r.Route("/exchange", func(r chi.Router) {
				r.Post("/inference", exchangeHandler.Inference)
				r.Get("/pickup-window", exchangeHandler.PickupWindow)
				r.Post("/pickup", exchangeHandler.SchedulePickup)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addressHandler.List)
				r.Post("/", addressHandler.Create)
				r.Get("/{address_id}", addressHandler.Get)
				r.Patch("/{address_id}", addressHandler.Update)
				r.Delete("/{address_id}", addressHandler.Delete)
				r.Post("/{address_id}/default", addressHandler.SetDefault)
			})

			r.Route("/voice", func(r chi.Router) {
				r.Post("/start", voiceHandler.Start)
				r.Post("/process", voiceHandler.Process)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/analytics", adminHandler.Analytics)
			r.Get("/chats", adminHandler.Chats)
		})
	})

	return otelhttp.NewHandler(r, "storefront-gateway")
}
