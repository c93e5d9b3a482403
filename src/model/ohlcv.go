package model

import "time"

// Bar is one OHLCV candle. Time is the bar open in UTC.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes returns the close series of bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// TailBars returns the last n bars, or all of them when n exceeds the length.
func TailBars(bars []Bar, n int) []Bar {
	if n <= 0 {
		return nil
	}
	if n >= len(bars) {
		return bars
	}
	return bars[len(bars)-n:]
}

// SessionMove is a percentage move between a reference close and a later session price.
type SessionMove struct {
	Move           float64 `json:"move"`
	LastPrice      float64 `json:"last_price"`
	ReferenceClose float64 `json:"reference_close"`
}

// Classification is the listing venue and instrument type of a ticker.
type Classification struct {
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quote_type"`
}
