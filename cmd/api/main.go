package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/mail"
	customerrepo "storefront/internal/repository/customer"
	itemrepo "storefront/internal/repository/item"
	orderrepo "storefront/internal/repository/order"
	paymentrepo "storefront/internal/repository/payment"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	"storefront/internal/stripe"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var itemCache cache.ItemCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		itemCache = cache.NewRedisCache(rdb)
		logger.Printf("catalog cache enabled at %s", cfg.RedisAddr)
	}

	var mailer checkoutsvc.Mailer
	if cfg.PostmarkToken != "" {
		mailer = mail.New(cfg.PostmarkToken, cfg.MailFrom)
		logger.Printf("order confirmation mail enabled from %s", cfg.MailFrom)
	}

	itemRepo := itemrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	paymentRepo := paymentrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	gateway := stripe.New(cfg.StripeSecretKey, cfg.StripeBaseURL, logger)

	catalogService := catalogsvc.New(itemRepo, itemCache, logger)
	cartService := cartsvc.New(itemRepo, orderRepo)
	checkoutService := checkoutsvc.New(orderRepo, customerRepo, paymentRepo, gateway, mailer, logger)
	customerService := customersvc.New(customerRepo, tokenRepo)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:  catalogService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		CustomerSvc: customerService,
	})

	reconcileCtx, stopReconcile := context.WithCancel(ctx)
	go reconcileLoop(reconcileCtx, checkoutService, cfg.ReconcileInterval, cfg.ReconcileAfter, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopReconcile()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// reconcileLoop periodically settles orders stuck in pending_payment, either
// finalizing them when the gateway knows the charge or reopening them.
func reconcileLoop(ctx context.Context, svc *checkoutsvc.Service, interval, olderThan time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			settled, err := svc.Reconcile(ctx, olderThan)
			if err != nil {
				logger.Printf("reconcile: %v", err)
				continue
			}
			if settled > 0 {
				logger.Printf("reconcile: settled %d pending orders", settled)
			}
		}
	}
}
