package main

import (
	"context"
	"database/sql"
	"fmt"
	"load-planner-service/internal/adapters/reference"
	"load-planner-service/internal/adapters/repositories"
	"load-planner-service/internal/config"
	"load-planner-service/internal/platform/db"
	"load-planner-service/internal/platform/obs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the reference schema and loads the reference YAML into
// Postgres (DATABASE_URL) or a SQLite file (LOADPLAN_SQLITE_PATH).
func main() {
	envErr := godotenv.Load()

	log, err := obs.NewLogger(config.Get("LOADPLAN_LOG_LEVEL", "info"), "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file found (using environment variables)")
	}

	if err := run(log); err != nil {
		log.Error("dbtool failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger) error {
	dialect, err := repositories.ParseDialect(config.Get("LOADPLAN_DB_DIALECT", "postgres"))
	if err != nil {
		return err
	}

	conn, err := open(dialect)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	refPath := config.Get("LOADPLAN_REFERENCE_PATH", "data/reference.yaml")
	return initAndSeed(ctx, conn, dialect, refPath, log)
}

func open(dialect repositories.Dialect) (*sql.DB, error) {
	if dialect == repositories.SQLite {
		return db.OpenSQLite(config.Get("LOADPLAN_SQLITE_PATH", "data/reference.db"))
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the %s dialect", dialect)
	}
	return db.Open(databaseURL)
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, refPath string, log *zap.Logger) error {
	log.Info("initializing database schema", zap.String("dialect", dialect.String()))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	doc, err := reference.ReadFile(refPath)
	if err != nil {
		return fmt.Errorf("read reference data: %w", err)
	}

	log.Info("seeding database", zap.String("path", refPath))
	if err := repositories.Seed(ctx, conn, dialect, doc.Trucks, doc.States); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete", zap.Int("trucks", len(doc.Trucks)), zap.Int("states", len(doc.States)))

	return nil
}
