package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/flamexyy/bloemige-storefront/internal/commerce"
	"github.com/flamexyy/bloemige-storefront/internal/config"
	delivery "github.com/flamexyy/bloemige-storefront/internal/delivery/http"
	"github.com/flamexyy/bloemige-storefront/internal/messaging/gochannel"
	redisrepo "github.com/flamexyy/bloemige-storefront/internal/repository/redis"
	"github.com/flamexyy/bloemige-storefront/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront cart and order reconciliation service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront exited")
	}
}

func serve(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.KeyPrefix, cfg.CartTTL)
	favoritesRepo := redisrepo.NewFavoritesRepository(rdb, cfg.KeyPrefix, cfg.CartTTL)

	// --- Write-behind bus ---
	pubSub := gochannel.NewPubSub(log)
	defer pubSub.Close()

	// --- Commerce backend ---
	client := commerce.NewClient(cfg.CommerceEndpoint, cfg.StorefrontToken, log)

	// --- Services ---
	cartSvc := service.NewCartService(cartRepo, pubSub, log)
	favoritesSvc := service.NewFavoritesService(favoritesRepo, log)
	checkoutSvc := service.NewCheckoutService(client, cartSvc, cfg.CheckoutDomain, log)
	orderSvc := service.NewOrderService(client, log)

	persister := service.NewCartPersister(pubSub, cartRepo, log)
	go func() {
		if err := persister.Run(ctx); err != nil {
			log.WithError(err).Error("Cart persister stopped")
			cancel()
		}
	}()

	// --- HTTP API ---
	handler := delivery.NewHandler(client, cartSvc, favoritesSvc, checkoutSvc, orderSvc, cfg.CartCookieName, log)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: delivery.EnableCORS(router),
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("HTTP server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	return httpServer.Shutdown(context.Background())
}
