package domain

// Candle represents one OHLC bucket from the venue's candleSnapshot endpoint.
// Enrichment only consumes High and Low; the rest is kept for the candle
// cache and the /api/candles passthrough.
type Candle struct {
	Coin     string  // instrument symbol
	Interval string  // venue interval code, e.g. "1m", "5m", "1h"
	OpenTime int64   // bucket start timestamp (ms)
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// CandleIntervalMs returns the bucket width in milliseconds for the interval
// codes the journal uses. Unknown codes return 0.
func CandleIntervalMs(interval string) int64 {
	switch interval {
	case "1m":
		return 60_000
	case "5m":
		return 300_000
	case "15m":
		return 900_000
	case "1h":
		return 3_600_000
	case "4h":
		return 14_400_000
	case "1d":
		return 86_400_000
	default:
		return 0
	}
}

// End returns the exclusive end of the candle's bucket, [OpenTime, End).
func (c *Candle) End() int64 {
	return c.OpenTime + CandleIntervalMs(c.Interval)
}
