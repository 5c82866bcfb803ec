package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"load-planner-service/internal/adapters/cache"
	"load-planner-service/internal/adapters/reference"
	"load-planner-service/internal/adapters/repositories"
	"load-planner-service/internal/api"
	"load-planner-service/internal/config"
	"load-planner-service/internal/platform/db"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/platform/obs"
	"load-planner-service/internal/ports"
	"load-planner-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires the configured reference source, the optional Redis plan cache and
// the planning services behind the HTTP router, then serves until signalled.
func main() {
	os.Exit(serve(config.Get("LOADPLAN_CONFIG", "")))
}

// serve runs the server and returns the process exit code. The logger is
// flushed on every path, so a failure is never lost to a skipped defer.
func serve(configPath string) int {
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openReference(cfg.Reference, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	catalog, rules, err := services.LoadReference(ctx, src)
	if err != nil {
		return err
	}
	log.Info("reference data loaded",
		zap.String("source", cfg.Reference.Source),
		zap.Int("trucks", catalog.Len()),
		zap.Int("states", len(rules.Codes())),
	)

	selector := services.NewTruckSelector(services.NewFitAnalyzer(), rules, cfg.MaxWorkers)
	calculator := services.NewPermitCalculator(rules)
	planner := services.NewLoadPlanner(selector, calculator, cfg.Weights, log.Named("planner"))

	// The cache is optional: an unreachable Redis at startup only disables it.
	var planCache ports.PlanCache
	if cfg.Redis.Enabled {
		client, err := cache.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("plan cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			rc := cache.NewRedisPlanCache(client, log.Named("cache"))
			defer func() { _ = rc.Close() }()
			planCache = rc
		}
	}

	router := api.NewRouter(api.Deps{
		Catalog:    catalog,
		Rules:      rules,
		Selector:   selector,
		Calculator: calculator,
		Planner:    planner,
		Weights:    cfg.Weights,
		Cache:      planCache,
		CacheTTL:   cfg.Redis.TTL,
		Metrics:    metrics.New("loadplan"),
		Log:        log,
	})

	// Planning is CPU bound and local; the write timeout only has to cover
	// large manifests, not external API latency.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openReference returns the configured reference source and a func that
// releases it.
func openReference(cfg config.ReferenceConfig, log *zap.Logger) (ports.ReferenceSource, func(), error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Source {
	case config.SourceYAML:
		return reference.NewYAMLSource(cfg.Path), func() {}, nil
	case config.SourceSQLite:
		conn, err = db.OpenSQLite(cfg.SQLitePath)
	case config.SourcePostgres:
		conn, err = db.Open(cfg.DatabaseURL)
	default:
		return nil, nil, fmt.Errorf("open reference: unknown source %q", cfg.Source)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open reference: %w", err)
	}

	repo := repositories.NewReferenceRepository(conn, log.Named("repository"))
	return repo, func() { _ = conn.Close() }, nil
}
