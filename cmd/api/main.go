package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogadapters "github.com/dejobratic/storefront/internal/catalog/adapters"
	cataloghttp "github.com/dejobratic/storefront/internal/catalog/adapters/http"
	catalogmemory "github.com/dejobratic/storefront/internal/catalog/adapters/memory"
	catalogpostgres "github.com/dejobratic/storefront/internal/catalog/adapters/postgres"
	"github.com/dejobratic/storefront/internal/catalog/adapters/seed"
	catalogapp "github.com/dejobratic/storefront/internal/catalog/app"
	catalogdomain "github.com/dejobratic/storefront/internal/catalog/domain"
	catalogmetrics "github.com/dejobratic/storefront/internal/catalog/metrics"
	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	checkouthttp "github.com/dejobratic/storefront/internal/checkout/adapters/http"
	checkoutmemory "github.com/dejobratic/storefront/internal/checkout/adapters/memory"
	checkoutpostgres "github.com/dejobratic/storefront/internal/checkout/adapters/postgres"
	checkoutapp "github.com/dejobratic/storefront/internal/checkout/app"
	checkoutmetrics "github.com/dejobratic/storefront/internal/checkout/metrics"
	checkoutports "github.com/dejobratic/storefront/internal/checkout/ports"
	"github.com/dejobratic/storefront/internal/config"
	"github.com/dejobratic/storefront/internal/csrf"
	"github.com/dejobratic/storefront/internal/database"
	"github.com/dejobratic/storefront/internal/events"
	"github.com/dejobratic/storefront/internal/httpapi"
	idemmemory "github.com/dejobratic/storefront/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/storefront/internal/idempotency/postgres"
	"github.com/dejobratic/storefront/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront api exited", "error", err)
		os.Exit(1)
	}
}

type purger interface {
	Purge(ctx context.Context) (int64, error)
}

type stores struct {
	products    catalogports.ProductRepository
	wishlist    catalogports.WishlistRepository
	idempotency catalogports.IdempotencyStore
	checkout    checkoutports.Catalog
	pool        *pgxpool.Pool
	idemPurger  purger
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTelInsecure,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := tel.Meter(cfg.Service.Name)
	httpMetrics, err := httpapi.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create database metrics: %w", err)
	}
	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create event metrics: %w", err)
	}
	catalogMetrics, err := catalogmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create catalog metrics: %w", err)
	}
	checkoutMetrics, err := checkoutmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create checkout metrics: %w", err)
	}

	var products []catalogdomain.Product
	if cfg.Store.SeedFile != "" {
		products, err = seed.Load(cfg.Store.SeedFile)
		if err != nil {
			return fmt.Errorf("load catalog seed: %w", err)
		}
		logger.Info("catalog seed loaded", "path", cfg.Store.SeedFile, "products", len(products))
	}

	st, err := openStores(ctx, cfg, logger, dbMetrics, products)
	if err != nil {
		return err
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	var bus catalogports.EventBus = events.NewNoopBus()
	if cfg.Events.Enabled {
		bus = events.NewLogBus(logger, slog.LevelInfo, eventMetrics)
	}

	catalogService := catalogapp.NewObservableService(
		catalogapp.NewService(
			catalogadapters.NewObservableProductRepository(st.products, dbMetrics),
			catalogadapters.NewObservableWishlistRepository(st.wishlist, dbMetrics),
			bus,
			st.idempotency,
			logger,
		),
		logger,
		catalogMetrics,
	)

	checkoutService := checkoutapp.NewObservableService(
		checkoutapp.NewService(st.checkout, checkoutapp.Settings{
			Currency: cfg.Checkout.Currency,
			TaxRate:  cfg.Checkout.TaxRate,
		}),
		logger,
		checkoutMetrics,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if st.pool != nil {
			if err := database.CheckHealth(r.Context(), st.pool); err != nil {
				httpapi.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	cataloghttp.NewHandler(catalogService).Register(mux)
	checkouthttp.NewHandler(checkoutService).Register(mux)

	protector := csrf.NewProtector(csrf.Config{
		CookieName: cfg.CSRF.CookieName,
		Secure:     cfg.CSRF.Secure,
	}, logger)

	var handler http.Handler = protector.Protect(mux)
	handler = httpapi.WithLogging(handler, logger)
	handler = httpapi.WithRecovery(handler, logger, httpMetrics)
	handler = httpapi.WithMetrics(handler, httpMetrics)
	handler = otelhttp.NewHandler(handler, cfg.Service.Name)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	})

	if st.idemPurger != nil && cfg.Idempotency.PurgeInterval > 0 {
		g.Go(func() error {
			purgeIdempotencyKeys(gctx, st.idemPurger, cfg.Idempotency, logger)
			return nil
		})
	}

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger, dbMetrics *database.Metrics, products []catalogdomain.Product) (*stores, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("create database pool: %w", err)
		}

		if err := dbMetrics.ObservePool(pool); err != nil {
			pool.Close()
			return nil, err
		}

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			result, err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed successfully", "version", result.Version, "applied", result.Applied)
		}

		productRepo := catalogpostgres.NewProductRepository(pool)
		for _, p := range products {
			if err := productRepo.Upsert(ctx, p); err != nil {
				pool.Close()
				return nil, fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}

		idem := idempostgres.NewStore(pool, cfg.Idempotency.TTL)
		return &stores{
			products:    productRepo,
			wishlist:    catalogpostgres.NewWishlistRepository(pool),
			idempotency: idem,
			checkout:    checkoutpostgres.NewCatalog(pool),
			pool:        pool,
			idemPurger:  idem,
		}, nil

	default:
		productRepo := catalogmemory.NewProductRepository(products...)
		idem := idemmemory.NewStore(cfg.Idempotency.TTL)
		return &stores{
			products:    productRepo,
			wishlist:    catalogmemory.NewWishlistRepository(productRepo),
			idempotency: idem,
			idemPurger:  idem,
			checkout:    checkoutmemory.NewCatalogFromFees(cfg.Checkout.ShippingFees),
		}, nil
	}
}

func purgeIdempotencyKeys(ctx context.Context, store purger, cfg config.IdempotencyConfig, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Purge(ctx)
			if err != nil {
				logger.WarnContext(ctx, "idempotency purge failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.InfoContext(ctx, "idempotency keys purged", "removed", removed)
			}
		}
	}
}
