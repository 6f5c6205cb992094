package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pizzeria-storefront/internal/cart"
	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/common"
	"github.com/noah-isme/pizzeria-storefront/internal/config"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/events"
	"github.com/noah-isme/pizzeria-storefront/internal/health"
	"github.com/noah-isme/pizzeria-storefront/internal/lock"
	"github.com/noah-isme/pizzeria-storefront/internal/notify"
	"github.com/noah-isme/pizzeria-storefront/internal/obs"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/ratelimit"
	"github.com/noah-isme/pizzeria-storefront/internal/resilience"
	"github.com/noah-isme/pizzeria-storefront/internal/security"
	"github.com/noah-isme/pizzeria-storefront/internal/session"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
	"github.com/noah-isme/pizzeria-storefront/internal/woo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pizzeria")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pizzeria-storefront",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
			StoreName:     cfg.BusinessName,
			UpstreamURL:   cfg.WooBaseURL,
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

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := connectRedis(rootCtx, cfg, logger, metricsEnabled)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	location := cfg.Location()
	formatter := pricing.NewFormatter(cfg.StoreLocale, cfg.CurrencySymbol)
	book := pricing.PriceBook{Location: location}

	wooClient := &woo.Client{
		BaseURL:        cfg.WooBaseURL,
		ConsumerKey:    cfg.WooConsumerKey,
		ConsumerSecret: cfg.WooConsumerSecret,
		HTTP: resilience.HTTPClient{
			Client:      notify.HTTPClient(cfg.UpstreamTimeout),
			Breakers:    woo.NewBreakers(logger),
			BaseBackoff: 200 * time.Millisecond,
			MaxAttempts: 3,
			Jitter:      0.2,
			Timeout:     cfg.UpstreamTimeout,
		},
	}

	loader := &session.Loader{
		Upstream: wooClient,
		Cache:    catalog.NewCache(redisClient, "storefront:", cfg.SessionSnapshotTTL),
		Defaults: session.Defaults{
			Shipping: shipping.Policy{
				FlatFee:               pricing.FromInt(cfg.DefaultShippingFee),
				FreeShippingEnabled:   true,
				FreeShippingThreshold: pricing.FromInt(cfg.DefaultFreeShippingAmount),
			},
			ExtraIngredientPrice: pricing.FromInt(cfg.ExtraIngredientPrice),
			Business: checkout.Business{
				Name:          cfg.BusinessName,
				Address:       cfg.BusinessAddress,
				City:          cfg.BusinessCity,
				WhatsAppPhone: cfg.NotifyWhatsAppPhone,
			},
			Schedule: checkout.DefaultSchedule(),
		},
		Logger: logger.With().Str("component", "session").Logger(),
	}
	holder := session.NewHolder(nil)
	if snapshot, err := loader.Load(rootCtx); err != nil {
		logger.Error().Err(err).Msg("initial session snapshot load failed; retrying in background")
	} else {
		holder.Swap(snapshot)
	}
	go holder.Run(rootCtx, loader, cfg.SessionRefreshInterval, logger.With().Str("component", "session").Logger())

	cartSvc := &cart.Service{
		Store:   cart.RedisStore{Client: redisClient, TTL: cfg.CartTTL},
		Source:  holder,
		Book:    book,
		Locker:  lock.Locker{R: redisClient},
		LockTTL: 5 * time.Second,
	}

	bus := &events.Bus{
		Store: events.RedisStreamStore{Client: redisClient, Stream: "events:orders"},
		Notifiers: []events.Notifier{&notify.EventRelay{
			Target: summaryNotifier(cfg, logger),
			Topics: events.OrderTopics(),
			Logger: &logger,
		}},
	}

	engine := discount.Engine{Formatter: &formatter}
	checkoutSvc := &checkout.Service{
		Cart:      cartSvc,
		Config:    holder,
		Submitter: wooClient,
		Events:    bus,
		Engine:    engine,
		Advisor: discount.Advisor{
			AmountThreshold: pricing.FromInt(cfg.PendingAmountThreshold),
			Formatter:       &formatter,
		},
		Formatter:     formatter,
		Location:      location,
		Logger:        logger.With().Str("component", "checkout").Logger(),
		NotifyTimeout: 10 * time.Second,
	}

	catalogHandler := &catalog.Handler{Source: holder, Book: book}
	storeHandler := &session.Handler{Holder: holder, Location: location}
	cartHandler := &cart.Handler{Svc: cartSvc, View: checkoutSvc}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}
	checkoutLimiter, err := ratelimit.New(redisClient, "ratelimit:checkout:", cfg.CheckoutRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise checkout rate limiter")
	}
	checkoutLimit := ratelimit.Handler{
		Limiter: checkoutLimiter,
		Key:     ratelimit.SessionOrIP,
		OnError: func(err error) { logger.Warn().Err(err).Msg("checkout rate limiter unavailable") },
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.RedisChecker{Client: redisClient},
		Config:       holder,
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: 64 << 10}.Middleware)
		v.Use(security.Headers{NoStore: true}.Middleware)

		v.Get("/catalog", catalogHandler.List)
		v.Get("/store", storeHandler.Store)
		v.Post("/sessions", cartHandler.CreateSession)

		v.Route("/sessions/{session}", func(s chi.Router) {
			s.Get("/cart", cartHandler.Get)
			s.Delete("/cart", cartHandler.Clear)
			s.Post("/cart/items", cartHandler.AddItem)
			s.Patch("/cart/items/{key}", cartHandler.UpdateItem)
			s.Delete("/cart/items/{key}", cartHandler.RemoveItem)
			s.Put("/delivery", cartHandler.SetDelivery)
			s.With(checkoutLimit.Middleware, idem.Middleware).Post("/checkout", checkoutHandler.Checkout)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-rootCtx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metricsEnabled bool) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

// summaryNotifier fans order summaries out to the configured channels.
func summaryNotifier(cfg *config.Config, logger zerolog.Logger) notify.Notifier {
	var targets notify.Multi
	if cfg.NotifyWebhookURL != "" {
		targets = append(targets, &notify.Webhook{
			URL:    cfg.NotifyWebhookURL,
			Secret: cfg.NotifyWebhookSecret,
			Client: notify.HTTPClient(cfg.UpstreamTimeout),
		})
	}
	if cfg.NotifyLogSummaries || len(targets) == 0 {
		targets = append(targets, notify.LogNotifier{Logger: logger.With().Str("component", "notify").Logger()})
	}
	return targets
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
