package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/congo-pay/walletapi/internal/config"
	"github.com/congo-pay/walletapi/internal/infra"
	"github.com/congo-pay/walletapi/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.AppName, cfg.AppEnv, cfg.IsDevelopment())

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}

	logger.Info("applying schema")
	if _, err := db.ExecContext(ctx, infra.Schema); err != nil {
		logger.Error("apply schema", "error", err)
		os.Exit(1)
	}
	logger.Info("schema applied")
}
