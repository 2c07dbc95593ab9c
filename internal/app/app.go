package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/promoshop/storefront/internal/domain/cart"
	"github.com/promoshop/storefront/internal/domain/catalog"
	"github.com/promoshop/storefront/internal/handler"
	"github.com/promoshop/storefront/internal/storage/kv"
	"github.com/promoshop/storefront/internal/storage/postgres"
	"github.com/promoshop/storefront/pkg/health"
	"github.com/promoshop/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Cart state storage: Redis when configured, a file directory otherwise,
	// with an in-memory fallback for local runs.
	slot, err := newCartStorage(ctx, lg, cfg)
	if err != nil {
		return errors.Wrap(err, "create cart storage")
	}
	defer slot.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("cart-storage", 5*time.Second, slot.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Catalog repository and the SKU lookup filter built from it.
	productRepo := postgres.NewProductRepository(pool)
	products, err := productRepo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	skus := catalog.NewSKUFilter(products)
	lg.Info("Catalog loaded", zap.Int("products", len(products)))

	// Cart store, rehydrated from whatever survived the last run.
	cartStore := cart.NewStore(slot, cfg.CartKey, lg.Named("cart"))
	cartStore.Load(ctx)

	// HTTP handlers.
	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		productRepo,
		skus,
		cartStore,
	)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", http.StripPrefix("/api", h.Routes()))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "storefront-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// newCartStorage picks the cart state backend from configuration. Any backend
// satisfies kv.Store; the cart store only needs its Get/Set subset.
func newCartStorage(ctx context.Context, lg *zap.Logger, cfg *Config) (kv.Store, error) {
	switch {
	case cfg.RedisURL != "":
		lg.Info("Using Redis cart storage")
		return kv.NewRedis(ctx, cfg.RedisURL)
	case cfg.CartDir != "":
		lg.Info("Using file cart storage", zap.String("dir", cfg.CartDir))
		return kv.NewFile(cfg.CartDir)
	default:
		lg.Warn("No cart storage configured, cart state will not survive restarts")
		return kv.NewMemory(), nil
	}
}
