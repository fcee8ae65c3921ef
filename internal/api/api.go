// Package api serves the journal's HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"hl-journal/internal/domain"
	"hl-journal/internal/observability"
	"hl-journal/internal/storage"
)

// TradeService rebuilds and serves a wallet's trades.
type TradeService interface {
	// EnsureTrades returns cached trades, refreshing only on a cold cache.
	EnsureTrades(ctx context.Context, wallet string) ([]*domain.Trade, error)
	// Refresh force-rebuilds from venue history.
	Refresh(ctx context.Context, wallet string) ([]*domain.Trade, error)
}

// Venue exposes the venue's read-only account and market data.
type Venue interface {
	FetchUserState(ctx context.Context, wallet string) (json.RawMessage, error)
	FetchCandles(ctx context.Context, coin, interval string, start, end int64) ([]*domain.Candle, error)
}

// Server holds handler dependencies.
type Server struct {
	trades      TradeService
	venue       Venue
	notes       storage.NoteStore
	tags        storage.TagStore
	screenshots storage.ScreenshotStore
	calendar    storage.CalendarStore

	uploadDir string
	started   time.Time
	logger    *log.Logger
}

// Options configures the API server.
type Options struct {
	Trades      TradeService
	Venue       Venue
	Notes       storage.NoteStore
	Tags        storage.TagStore
	Screenshots storage.ScreenshotStore
	Calendar    storage.CalendarStore
	UploadDir   string
	Logger      *log.Logger
}

// New creates the API server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	return &Server{
		trades:      opts.Trades,
		venue:       opts.Venue,
		notes:       opts.Notes,
		tags:        opts.Tags,
		screenshots: opts.Screenshots,
		calendar:    opts.Calendar,
		uploadDir:   uploadDir,
		started:     time.Now(),
		logger:      logger,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/trades", s.instrument("/api/trades", s.handleGetTrades))
	mux.HandleFunc("POST /api/trades/refresh", s.instrument("/api/trades/refresh", s.handleRefreshTrades))
	mux.HandleFunc("GET /api/state", s.instrument("/api/state", s.handleGetState))
	mux.HandleFunc("GET /api/candles", s.instrument("/api/candles", s.handleGetCandles))

	mux.HandleFunc("GET /api/trades/{id}/notes", s.instrument("/api/trades/{id}/notes", s.handleGetNotes))
	mux.HandleFunc("PUT /api/trades/{id}/notes", s.instrument("/api/trades/{id}/notes", s.handleSaveNotes))

	mux.HandleFunc("GET /api/trades/{id}/tags", s.instrument("/api/trades/{id}/tags", s.handleGetTags))
	mux.HandleFunc("POST /api/trades/{id}/tags", s.instrument("/api/trades/{id}/tags", s.handleAddTag))
	mux.HandleFunc("DELETE /api/trades/{id}/tags/{tag}", s.instrument("/api/trades/{id}/tags/{tag}", s.handleRemoveTag))
	mux.HandleFunc("GET /api/tags", s.instrument("/api/tags", s.handleGetAllTags))
	mux.HandleFunc("GET /api/trade-tags", s.instrument("/api/trade-tags", s.handleGetTradeTagsMap))

	mux.HandleFunc("GET /api/trades/{id}/screenshots", s.instrument("/api/trades/{id}/screenshots", s.handleGetScreenshots))
	mux.HandleFunc("POST /api/trades/{id}/screenshots", s.instrument("/api/trades/{id}/screenshots", s.handleUploadScreenshot))
	mux.HandleFunc("GET /api/screenshots/{filename}", s.instrument("/api/screenshots/{filename}", s.handleServeScreenshot))
	mux.HandleFunc("DELETE /api/screenshots/{id}", s.instrument("/api/screenshots/{id}", s.handleDeleteScreenshot))

	mux.HandleFunc("GET /api/calendar/notes", s.instrument("/api/calendar/notes", s.handleGetAllDayNotes))
	mux.HandleFunc("GET /api/calendar/notes/{date}", s.instrument("/api/calendar/notes/{date}", s.handleGetDayNote))
	mux.HandleFunc("PUT /api/calendar/notes/{date}", s.instrument("/api/calendar/notes/{date}", s.handleSaveDayNote))
	mux.HandleFunc("GET /api/calendar/week/{week}", s.instrument("/api/calendar/week/{week}", s.handleGetWeekNote))
	mux.HandleFunc("PUT /api/calendar/week/{week}", s.instrument("/api/calendar/week/{week}", s.handleSaveWeekNote))
	mux.HandleFunc("GET /api/calendar/weeks", s.instrument("/api/calendar/weeks", s.handleGetAllWeekNotes))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	return corsMiddleware(mux)
}

// corsMiddleware allows browser clients from any origin; the server only
// exposes a single trader's journal on a local network.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		observability.RecordHTTPRequest(route, http.StatusText(rec.status), time.Since(start).Seconds())
	}
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "running",
		"uptime": time.Since(s.started).String(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error in the shape clients expect.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// walletParam extracts the required wallet query parameter.
func walletParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "wallet query parameter is required")
		return "", false
	}
	return wallet, true
}
