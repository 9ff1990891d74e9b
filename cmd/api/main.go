package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/basket"
	"github.com/noah-isme/storefront-cart/internal/cache"
	"github.com/noah-isme/storefront-cart/internal/cart"
	"github.com/noah-isme/storefront-cart/internal/common"
	"github.com/noah-isme/storefront-cart/internal/config"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/health"
	"github.com/noah-isme/storefront-cart/internal/lock"
	"github.com/noah-isme/storefront-cart/internal/obs"
	"github.com/noah-isme/storefront-cart/internal/ratelimit"
	"github.com/noah-isme/storefront-cart/internal/resilience"
	"github.com/noah-isme/storefront-cart/internal/security"
	"github.com/noah-isme/storefront-cart/internal/snapshot"
	"github.com/noah-isme/storefront-cart/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	baseLogger, logCloser := obs.NewLogger(obs.LogOptions{
		Format: cfg.Obs.LogFormat,
		Level:  cfg.Obs.LogLevel,
		File:   cfg.Obs.LogFile,
	})
	defer func() { _ = logCloser.Close() }()
	logger := baseLogger.With().Str("env", cfg.AppEnv).Logger()

	if cfg.Obs.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)
		resilience.MustRegisterMetrics(nil)
	}

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   cfg.Obs.ServiceName,
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		redisClient *redis.Client
		kv          snapshot.KV
		locker      lock.Locker
		limiter     ratelimit.Allower
		checks      []health.Check
	)
	if cfg.RedisURL != "" {
		redisClient = connectRedis(ctx, cfg, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		kv = cache.NewRedis(redisClient, cfg.SnapshotTTL)
		locker = lock.Redis{R: redisClient}
		checks = append(checks, health.RedisCheck(redisClient))
	} else {
		logger.Warn().Msg("REDIS_URL not set, snapshots kept in process memory")
		mem := cache.NewMemory(cfg.SnapshotTTL)
		go sweepMemory(ctx, mem, cfg.SweepInterval, logger)
		kv = mem
		locker = lock.NewLocal()
	}
	if cfg.RateLimit.Backend == "redis" && redisClient != nil {
		limiter = ratelimit.SlidingRedis{Client: redisClient, Prefix: "ratelimit:"}
	} else {
		limiter = ratelimit.NewMemory()
	}

	var basketClient cart.BasketService
	if cfg.BasketBaseURL != "" {
		client, err := basket.New(basket.Config{
			BaseURL:   cfg.BasketBaseURL,
			CSRFToken: cfg.BasketCSRFToken,
			Timeout:   cfg.BasketTimeout,
			Breaker: resilience.NewBreaker(resilience.BreakerConfig{
				Target:       "basket",
				MinRequests:  cfg.Breaker.MinRequests,
				FailureRatio: cfg.Breaker.FailureRatio,
				OpenFor:      cfg.Breaker.OpenFor,
			}, logger),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("initialise basket client")
		}
		basketClient = client
	}

	registry := discount.DefaultRegistry()
	if len(cfg.Discounts) > 0 {
		registry = discount.NewRegistry(cfg.Discounts)
		logger.Info().Int("codes", len(registry)).Msg("discount registry loaded from file")
	}

	sessions := cart.NewService(cart.Options{
		Registry: registry,
		Currency: cfg.Currency,
		Timings: ui.Timings{
			SpinnerDelay:    cfg.SpinnerDelay,
			PopupDuration:   cfg.PopupDuration,
			MessageDuration: cfg.MessageDuration,
		},
		Snapshots: snapshot.NewStore(kv, locker, logger),
		Basket:    basketClient,
	}, cfg.SessionTTL, logger)
	sweeperDone := make(chan struct{})
	go func() {
		sessions.Run(ctx, cfg.SweepInterval)
		close(sweeperDone)
	}()

	cartHandler := &cart.Handler{Svc: sessions, Validate: validator.New(validator.WithRequiredStructEnabled())}
	idem := common.Idem{R: redisClient, TTL: 10 * time.Minute}
	rateLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.SessionKey, Window: cfg.RateLimit.Window, Max: cfg.RateLimit.Limit},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate_limit_unavailable") },
	}

	var httpMetrics *obs.HTTPMetrics
	if cfg.Obs.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", security.DefaultCSRFHeader, "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if httpMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	healthHandler := health.Handler{Checks: checks}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1/sessions", func(s chi.Router) {
		s.Use(security.BodyLimit{Max: 256 << 10}.Middleware)
		if cfg.CSRFEnabled {
			s.Use(security.CSRF{}.Middleware)
		}
		s.Post("/", cartHandler.Create)
		s.Get("/{id}", cartHandler.Get)
		s.With(rateLimit.Middleware, idem.Middleware).Post("/{id}/events", cartHandler.Event)
		s.Post("/{id}/unload", cartHandler.Unload)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Msg("server draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	stop()
	<-sweeperDone
	logger.Info().Msg("server stopped")
}

func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return client
}

func sweepMemory(ctx context.Context, mem *cache.Memory, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Sweep(); n > 0 {
				logger.Debug().Int("expired", n).Int("remaining", mem.Len()).Msg("snapshot_cache_swept")
			}
		}
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
