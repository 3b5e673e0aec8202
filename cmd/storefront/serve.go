package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/consumer"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/payment/paystack"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/service"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when Kafka is configured, the order event workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// incoming traceparent headers become the parent of the request span
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return err
	}
	defer mongoDB.Client().Disconnect(context.Background()) //nolint:errcheck
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}
	log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))

	sqlRepo, err := repository.NewSQLRepository(&cfg.DB)
	if err != nil {
		return err
	}
	defer sqlRepo.Close()
	if err := sqlRepo.RunMigrations(&cfg.DB); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	redisCache := cache.NewRedisCache(redisClient)
	catalogService := service.NewCatalogService(repository.NewMongoCatalogRepository(mongoDB), redisCache, log)
	cartService := service.NewCartService(repository.NewMongoCartRepository(mongoDB), redisCache, catalogService, log)
	orderService := service.NewOrderService(repository.NewMongoOrderRepository(mongoDB), sqlRepo, log)

	var verifier paystack.Verifier
	if cfg.PaystackSecretKey != "" {
		verifier = paystack.NewClient(paystack.Config{
			BaseURL:   cfg.PaystackBaseURL,
			SecretKey: cfg.PaystackSecretKey,
		}, log)
	} else {
		log.Warn("PAYSTACK_SECRET_KEY not set, card callbacks are trusted without verification")
	}

	flow := checkout.NewFlow(checkout.Deps{
		Carts:    cartService,
		Orders:   orderService,
		Settings: cfg.CheckoutSettings(),
		Logger:   log,
	})
	checkoutService := service.NewCheckoutService(
		flow,
		cache.NewRedisSessionStore(redisClient, cfg.SessionTTL),
		catalogService,
		paystack.NewCallbackGateways(verifier, log),
		log,
	)

	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(catalogService, cfg.Store.WhatsAppNumber, cfg.RequestTimeout, log),
		Carts:    h.NewCartHandler(cartService, cfg.RequestTimeout, log),
		Checkout: h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout, log),
		Orders:   h.NewOrdersHandler(orderService, cfg.RequestTimeout, log),
		Viewers:  service.NewViewerResolver(sqlRepo, log),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(sqlRepo, publisher.NewKafkaWriter(cfg.KafkaBrokers...), log)
		defer poller.Close() //nolint:errcheck
		cleanup := consumer.NewCartCleanup(cartService, consumer.NewKafkaReader(cfg.KafkaBrokers...), log)
		defer cleanup.Close()

		g.Go(func() error {
			poller.Run(gctx)
			return nil
		})
		g.Go(func() error {
			cleanup.Run(gctx)
			return nil
		})
		log.Info("order event workers started", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		log.Info("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
