// Package main runs the trade journal server:
// - HTTP API: trades, account state, candles, notes, tags, screenshots, calendar
// - Refresh: on-demand full rebuild of a wallet's trades from venue fill history
// - Live (optional): WebSocket userFills stream keeps tracked wallets current
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hl-journal/internal/api"
	"hl-journal/internal/hyperliquid"
	"hl-journal/internal/journal"
	"hl-journal/internal/refresh"
	"hl-journal/internal/storage"
	chstore "hl-journal/internal/storage/clickhouse"
	"hl-journal/internal/storage/memory"
	"hl-journal/internal/storage/migrations"
	pgstore "hl-journal/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	fillStore       storage.FillStore
	tradeStore      storage.TradeStore
	noteStore       storage.NoteStore
	tagStore        storage.TagStore
	screenshotStore storage.ScreenshotStore
	calendarStore   storage.CalendarStore
	candleStore     storage.CandleStore
}

func main() {
	// Load .env file if exists
	godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ADDR", ":8000"), "HTTP listen address")
	apiURL := flag.String("api-url", envOr("HYPERLIQUID_API_URL", hyperliquid.DefaultAPIURL), "Hyperliquid info endpoint")
	wsURL := flag.String("ws-url", envOr("HYPERLIQUID_WS_URL", hyperliquid.DefaultWSURL), "Hyperliquid WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	uploadDir := flag.String("upload-dir", envOr("UPLOAD_DIR", "uploads"), "Directory for screenshot uploads")
	liveWallets := flag.String("live-wallets", os.Getenv("LIVE_WALLETS"), "Comma-separated wallets to track over WebSocket")
	enrich := flag.Bool("enrich", true, "Enrich trades with candle-based MAE/MFE")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Venue client + refresh service
	client := hyperliquid.NewClient(*apiURL,
		hyperliquid.WithLogger(log.New(os.Stdout, "[hyperliquid] ", log.LstdFlags|log.Lshortfile)))

	var candles journal.CandleSource
	if *enrich {
		candles = hyperliquid.NewCachedCandleSource(client, stores.candleStore,
			log.New(os.Stdout, "[candles] ", log.LstdFlags|log.Lshortfile))
	}

	svc := refresh.NewService(client, stores.fillStore, stores.tradeStore, candles,
		log.New(os.Stdout, "[refresh] ", log.LstdFlags|log.Lshortfile))

	// Live fill streaming for tracked wallets
	wallets := splitWallets(*liveWallets)
	if len(wallets) > 0 {
		if err := startLiveStreams(ctx, *wsURL, wallets, svc, logger); err != nil {
			logger.Fatalf("Failed to start live streams: %v", err)
		}
	}

	// HTTP API
	server := api.New(api.Options{
		Trades:      svc,
		Venue:       client,
		Notes:       stores.noteStore,
		Tags:        stores.tagStore,
		Screenshots: stores.screenshotStore,
		Calendar:    stores.calendarStore,
		UploadDir:   *uploadDir,
		Logger:      log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	})

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}

		// Second signal forces immediate exit
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-shutdownCtx.Done():
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment variable's value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitWallets parses the comma-separated wallet list.
func splitWallets(s string) []string {
	var wallets []string
	for _, w := range strings.Split(s, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			wallets = append(wallets, w)
		}
	}
	return wallets
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		tradeStore := memory.NewTradeStore()
		stores := &allStores{
			fillStore:       memory.NewFillStore(),
			tradeStore:      tradeStore,
			noteStore:       memory.NewNoteStore(),
			tagStore:        memory.NewTagStore(tradeStore),
			screenshotStore: memory.NewScreenshotStore(),
			calendarStore:   memory.NewCalendarStore(),
			candleStore:     memory.NewCandleStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL: fills, trades, journal annotations
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse: candle cache
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		fillStore:       pgstore.NewFillStore(pool),
		tradeStore:      pgstore.NewTradeStore(pool),
		noteStore:       pgstore.NewNoteStore(pool),
		tagStore:        pgstore.NewTagStore(pool),
		screenshotStore: pgstore.NewScreenshotStore(pool),
		calendarStore:   pgstore.NewCalendarStore(pool),
		candleStore:     chstore.NewCandleStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// startLiveStreams subscribes each tracked wallet's fill stream and keeps
// its journal current in the background.
func startLiveStreams(ctx context.Context, wsURL string, wallets []string, svc *refresh.Service, logger *log.Logger) error {
	ws, err := hyperliquid.NewWSClient(ctx, wsURL, nil,
		log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lshortfile))
	if err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}

	for _, wallet := range wallets {
		events, err := ws.SubscribeUserFills(wallet)
		if err != nil {
			ws.Close()
			return fmt.Errorf("subscribe %s: %w", wallet, err)
		}
		logger.Printf("Tracking live fills for %s", wallet)
		go func(wallet string, events <-chan hyperliquid.FillEvent) {
			if err := svc.RunLive(ctx, wallet, events); err != nil && err != context.Canceled {
				logger.Printf("Live stream for %s stopped: %v", wallet, err)
			}
		}(wallet, events)
	}

	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	return nil
}
