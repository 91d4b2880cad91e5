// Command storefront-gateway serves the storefront over HTTP, holding the
// session and cart server-side.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/THE-DEEPDAS/HTT/internal/app"
	"github.com/THE-DEEPDAS/HTT/internal/config"
	h "github.com/THE-DEEPDAS/HTT/internal/http"
	"github.com/THE-DEEPDAS/HTT/internal/logger"
)

func main() {
	configFile := flag.String("config", os.Getenv("STOREFRONT_CONFIG"), "config file")
	flag.Parse()

	cfg, err := config.Load(*configFile, "memory://")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()

	router := h.NewRouter(h.Services{
		Cart:      a.Cart,
		Auth:      a.Auth,
		Products:  a.Products,
		Addresses: a.Addresses,
		Orders:    a.Orders,
		Checkout:  a.Checkout,
		Exchange:  a.Exchange,
		Voice:     a.Voice,
		Admin:     a.Admin,
	}, h.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Logger:         log.Named("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	background := a.RunBackground(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront gateway starting",
			zap.String("port", cfg.HTTP.Port),
			zap.String("api", cfg.API.BaseURL),
			zap.String("client_id", a.ClientID),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	cancel()
	background.Wait()
	a.FlushEvents(shutdownCtx)

	log.Info("server exited")
	return nil
}
