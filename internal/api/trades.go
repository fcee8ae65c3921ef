package api

import (
	"net/http"
	"strconv"
	"time"

	"hl-journal/internal/domain"
)

// tradeJSON is the wire shape of a reconstructed trade.
type tradeJSON struct {
	ID       int64   `json:"id"`
	Wallet   string  `json:"wallet"`
	Coin     string  `json:"coin"`
	Side     string  `json:"side"`
	EntryPx  float64 `json:"entry_px"`
	ExitPx   float64 `json:"exit_px"`
	Size     float64 `json:"size"`
	Pnl      float64 `json:"pnl"`
	Fees     float64 `json:"fees"`
	OpenTime int64   `json:"open_time"`
	CloseTime int64  `json:"close_time"`
	HoldMs   int64   `json:"hold_ms"`
	MAE      float64 `json:"mae"`
	MFE      float64 `json:"mfe"`
	FillIDs  string  `json:"fill_ids"`
	Orphan   bool    `json:"orphan"`
}

func toTradeJSON(trades []*domain.Trade) []tradeJSON {
	out := make([]tradeJSON, 0, len(trades))
	for _, t := range trades {
		out = append(out, tradeJSON{
			ID:        t.ID,
			Wallet:    t.Wallet,
			Coin:      t.Coin,
			Side:      t.Side,
			EntryPx:   t.EntryPx,
			ExitPx:    t.ExitPx,
			Size:      t.Size,
			Pnl:       t.Pnl,
			Fees:      t.Fees,
			OpenTime:  t.OpenTime,
			CloseTime: t.CloseTime,
			HoldMs:    t.HoldMs,
			MAE:       t.MAE,
			MFE:       t.MFE,
			FillIDs:   t.FillIDs,
			Orphan:    t.Orphan,
		})
	}
	return out
}

// handleGetTrades serves the wallet's trades, refreshing on a cold cache.
func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	trades, err := s.trades.EnsureTrades(r.Context(), wallet)
	if err != nil {
		s.logger.Printf("get trades for %s: %v", wallet, err)
		writeError(w, http.StatusBadGateway, "failed to fetch trades from Hyperliquid")
		return
	}

	writeJSON(w, http.StatusOK, toTradeJSON(trades))
}

// handleRefreshTrades force re-fetches history and rebuilds trades.
func (s *Server) handleRefreshTrades(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	trades, err := s.trades.Refresh(r.Context(), wallet)
	if err != nil {
		s.logger.Printf("refresh trades for %s: %v", wallet, err)
		writeError(w, http.StatusBadGateway, "failed to fetch trades from Hyperliquid")
		return
	}

	writeJSON(w, http.StatusOK, toTradeJSON(trades))
}

// handleGetState proxies the venue's account state verbatim.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	wallet, ok := walletParam(w, r)
	if !ok {
		return
	}

	state, err := s.venue.FetchUserState(r.Context(), wallet)
	if err != nil {
		s.logger.Printf("get state for %s: %v", wallet, err)
		writeError(w, http.StatusBadGateway, "failed to fetch account state")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(state)
}

// candleJSON mirrors the venue's candle shape.
type candleJSON struct {
	OpenTime int64   `json:"t"`
	Coin     string  `json:"s"`
	Interval string  `json:"i"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   float64 `json:"v"`
}

// handleGetCandles serves OHLC data for charting.
func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coin := q.Get("coin")
	if coin == "" {
		coin = "BTC"
	}
	interval := q.Get("interval")
	if interval == "" {
		interval = "5m"
	}
	start, _ := strconv.ParseInt(q.Get("start"), 10, 64)
	end, err := strconv.ParseInt(q.Get("end"), 10, 64)
	if err != nil || end == 0 {
		end = time.Now().UnixMilli()
	}

	candles, err := s.venue.FetchCandles(r.Context(), coin, interval, start, end)
	if err != nil {
		s.logger.Printf("get candles %s %s: %v", coin, interval, err)
		writeError(w, http.StatusBadGateway, "failed to fetch candle data")
		return
	}

	out := make([]candleJSON, 0, len(candles))
	for _, c := range candles {
		out = append(out, candleJSON{
			OpenTime: c.OpenTime,
			Coin:     c.Coin,
			Interval: c.Interval,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			Volume:   c.Volume,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
