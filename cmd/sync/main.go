// Command sync performs a one-shot rebuild of a wallet's trade journal
// from its full Hyperliquid fill history, then exits. Useful for cron
// jobs and for seeding a fresh database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hl-journal/internal/hyperliquid"
	"hl-journal/internal/journal"
	"hl-journal/internal/refresh"
	"hl-journal/internal/storage"
	chstore "hl-journal/internal/storage/clickhouse"
	"hl-journal/internal/storage/migrations"
	pgstore "hl-journal/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	wallet := flag.String("wallet", os.Getenv("WALLET"), "Wallet address to sync")
	apiURL := flag.String("api-url", envOr("HYPERLIQUID_API_URL", hyperliquid.DefaultAPIURL), "Hyperliquid info endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	enrich := flag.Bool("enrich", true, "Enrich trades with candle-based MAE/MFE")
	timeout := flag.Duration("timeout", 15*time.Minute, "Overall sync timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[sync] ", log.LstdFlags|log.Lshortfile)

	if *wallet == "" {
		logger.Fatal("--wallet is required")
	}
	if *postgresDSN == "" || *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// A signal aborts the in-flight sync
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, aborting sync", sig)
		cancel()
	}()

	if err := run(ctx, *wallet, *apiURL, *postgresDSN, *clickhouseDSN, *enrich, logger); err != nil {
		logger.Fatalf("Sync failed: %v", err)
	}
}

func run(ctx context.Context, wallet, apiURL, postgresDSN, clickhouseDSN string, enrich bool, logger *log.Logger) error {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		return fmt.Errorf("run clickhouse migrations: %w", err)
	}
	defer chConn.Close()

	client := hyperliquid.NewClient(apiURL, hyperliquid.WithLogger(logger))

	var candles journal.CandleSource
	var candleStore storage.CandleStore = chstore.NewCandleStore(chConn)
	if enrich {
		candles = hyperliquid.NewCachedCandleSource(client, candleStore, logger)
	}

	svc := refresh.NewService(client, pgstore.NewFillStore(pool), pgstore.NewTradeStore(pool), candles, logger)

	started := time.Now()
	trades, err := svc.Refresh(ctx, wallet)
	if err != nil {
		return err
	}

	logger.Printf("Synced %s in %v: %d trades", wallet, time.Since(started), len(trades))
	return nil
}

// envOr returns the environment variable's value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
