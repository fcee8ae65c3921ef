package hyperliquid

import (
	"strconv"

	"hl-journal/internal/domain"
)

// wireFill is a fill as the info endpoint returns it. Numeric fields
// arrive as decimal strings.
type wireFill struct {
	Coin          string `json:"coin"`
	Px            string `json:"px"`
	Sz            string `json:"sz"`
	Side          string `json:"side"`
	Time          int64  `json:"time"`
	StartPosition string `json:"startPosition"`
	Dir           string `json:"dir"`
	ClosedPnl     string `json:"closedPnl"`
	Hash          string `json:"hash"`
	OID           int64  `json:"oid"`
	Crossed       bool   `json:"crossed"`
	Fee           string `json:"fee"`
	TID           int64  `json:"tid"`
}

// toDomain converts a wire fill, defaulting malformed numerics to zero.
// The venue occasionally omits startPosition on very old fills.
func (w *wireFill) toDomain(wallet string) *domain.Fill {
	tid := w.TID
	if tid == 0 {
		tid = w.OID
	}
	return &domain.Fill{
		TID:           tid,
		OID:           w.OID,
		Wallet:        wallet,
		Coin:          w.Coin,
		Px:            parseFloat(w.Px),
		Sz:            parseFloat(w.Sz),
		Side:          w.Side,
		Dir:           w.Dir,
		Time:          w.Time,
		StartPosition: parseFloat(w.StartPosition),
		ClosedPnl:     parseFloat(w.ClosedPnl),
		Fee:           parseFloat(w.Fee),
		Hash:          w.Hash,
		Crossed:       w.Crossed,
	}
}

// wireCandle is a candle as candleSnapshot returns it.
type wireCandle struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Coin      string `json:"s"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	Close     string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Volume    string `json:"v"`
	Trades    int64  `json:"n"`
}

// toDomain converts a wire candle. A candle whose high or low is missing
// or unparseable is reported as not ok and must be dropped: excursion
// scanning reads exactly those two fields, and a zero low would register
// as a total drawdown on every long trade it overlaps.
func (w *wireCandle) toDomain() (*domain.Candle, bool) {
	high, ok := strictFloat(w.High)
	if !ok {
		return nil, false
	}
	low, ok := strictFloat(w.Low)
	if !ok {
		return nil, false
	}
	return &domain.Candle{
		Coin:     w.Coin,
		Interval: w.Interval,
		OpenTime: w.OpenTime,
		Open:     parseFloat(w.Open),
		High:     high,
		Low:      low,
		Close:    parseFloat(w.Close),
		Volume:   parseFloat(w.Volume),
	}, true
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func strictFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
