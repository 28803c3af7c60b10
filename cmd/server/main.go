package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/app"
	"github.com/iliyamo/raffle-reservation/internal/config"
	"github.com/iliyamo/raffle-reservation/internal/handler"
	"github.com/iliyamo/raffle-reservation/internal/live"
	"github.com/iliyamo/raffle-reservation/internal/middleware"
	"github.com/iliyamo/raffle-reservation/internal/queue"
	"github.com/iliyamo/raffle-reservation/internal/router"
	"github.com/iliyamo/raffle-reservation/internal/service"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	stores, err := app.OpenStores(openCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stores.Close(closeCtx)
	}()
	logger.Info("record store ready", zap.String("driver", cfg.StoreDriver))

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		logger.Info("redis connected")
	} else {
		logger.Info("redis unavailable; using in-process rate limiting and single-instance live updates")
	}

	// live view
	hub := live.NewHub(logger)
	go hub.Run(ctx)
	projector := live.NewProjector(stores.Entries, cfg.Raffle.TotalSlots, hub, logger)
	if rdb != nil {
		instanceID := cfg.InstanceID
		if instanceID == "" {
			instanceID = uuid.NewString()
		}
		relay := live.NewRedisRelay(rdb, instanceID, logger)
		projector.SetAnnouncer(relay)
		go func() {
			for {
				err := relay.Listen(ctx, projector.Signal)
				if ctx.Err() != nil {
					return
				}
				logger.Warn("live relay interrupted, resubscribing", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
				}
				// catch up on changes missed while unsubscribed
				projector.Signal()
			}
		}()
	}
	go projector.Run(ctx)

	// services
	opts := []service.Option{service.WithNotifier(projector), service.WithLogger(logger)}
	if cfg.EventsOn {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(cfg.RabbitURL, logger)))
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("audit consumer stopped", zap.Error(err))
			}
		}()
	}
	reservations := service.NewReservationService(stores.Entries, cfg.Raffle.TotalSlots, opts...)
	admin := service.NewAdminService(stores.Entries, cfg.Raffle.TotalSlots, cfg.Raffle.PriceCents, opts...)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(app.RequestLogger(logger))

	router.RegisterRoutes(e, router.Handlers{
		Health:  handler.Health(stores.Health),
		Public:  handler.NewPublicHandler(reservations, projector),
		Live:    handler.NewLiveHandler(hub, logger),
		Payment: handler.NewPaymentHandler(cfg.Raffle.Title, cfg.Raffle.PaymentPayload, cfg.Raffle.PriceCents, cfg.Raffle.Currency),
		Auth:    handler.NewAuthHandler(cfg, stores.Admins, stores.Tokens),
		Admin:   handler.NewAdminHandler(admin, cfg.Raffle.Title),
	}, router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}, cfg.JWTSecret)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(e)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Int("slots", cfg.Raffle.TotalSlots))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
