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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"thriftmart/internal/adapter/api"
	"thriftmart/internal/adapter/api/handler"
	apimiddleware "thriftmart/internal/adapter/api/middleware"
	"thriftmart/internal/adapter/api/router"
	"thriftmart/internal/adapter/web"
	"thriftmart/internal/app"
	"thriftmart/internal/infrastructure/messaging"
	"thriftmart/internal/infrastructure/ratelimit"
	"thriftmart/internal/infrastructure/telemetry"
	"thriftmart/internal/infrastructure/websocket"
	"thriftmart/internal/usecase"
	"thriftmart/pkg/config"
	"thriftmart/pkg/logger"
	"thriftmart/pkg/response"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("Failed to initialize tracer: %v", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown: %v", err)
		}
	}()
	metrics := telemetry.NewMetrics(cfg.ServiceName)

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	var publisher usecase.EventPublisher = messaging.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := messaging.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			logger.Error("Failed to connect to NATS: %v", err)
			os.Exit(1)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("Publishing view events to NATS at %s", cfg.NatsURL)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.ServiceName+":ratelimit", cfg.ViewRateLimit, cfg.ViewRateWindow)
		logger.Info("View rate limiting backed by Redis at %s", cfg.RedisAddr)
	} else {
		memoryLimiter := ratelimit.NewMemoryLimiter(cfg.ViewRateLimit, cfg.ViewRateWindow)
		memoryLimiter.StartCleanupRoutine(ctx, 5*time.Minute)
		limiter = memoryLimiter
	}

	storefrontUseCase := usecase.NewStorefrontUseCase(
		application.Listings,
		application.Categories,
		publisher,
		cfg.ViewIncrementMode,
		metrics,
	)

	images := web.ImageResolver{BaseURL: cfg.ImageBaseURL, Placeholder: cfg.PlaceholderImage}
	listingPolicy := usecase.ParseErrorPolicy(cfg.ListingErrorPolicy)
	categoryPolicy := usecase.ParseErrorPolicy(cfg.CategoryErrorPolicy)

	handler.Setup(storefrontUseCase, images, listingPolicy, categoryPolicy)
	handler.SetupHealthHandler(application.Driver(), application.Ping)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("Failed to parse templates: %v", err)
		os.Exit(1)
	}

	wsManager := websocket.NewManager(metrics)
	wsManager.Start(ctx)

	wsHandler := handler.NewWebSocketHandler(ctx, wsManager, web.SessionConfig{
		Storefront:          storefrontUseCase,
		Changes:             application.Changes,
		Renderer:            renderer,
		Images:              images,
		ListingErrorPolicy:  listingPolicy,
		CategoryErrorPolicy: categoryPolicy,
		ViewLimiter:         limiter,
		Metrics:             metrics,
	}, cfg.AllowedOrigins)

	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = apimiddleware.ClientIPExtractor(cfg.TrustedProxies)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	} else {
		e.Use(middleware.CORS())
	}
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, cfg.ServiceName,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/ws" && r.URL.Path != "/metrics"
			}),
		)
	}))

	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()
	e.Renderer = renderer

	router.Setup(e, apimiddleware.RateLimit(limiter, "views", metrics), wsHandler, metrics)

	scheduler := cron.New(cron.WithLocation(time.UTC))
	if cfg.ResyncSchedule != "" {
		_, err := scheduler.AddFunc(cfg.ResyncSchedule, func() {
			if ctx.Err() != nil {
				return
			}
			n := wsManager.RefreshAll()
			logger.Debug("Resync: refreshed %d sessions", n)
		})
		if err != nil {
			logger.Error("Invalid RESYNC_SCHEDULE %q: %v", cfg.ResyncSchedule, err)
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("Session resync scheduled: %s", cfg.ResyncSchedule)
	}

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
	wsManager.Wait()
}
