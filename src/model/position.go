package model

// Position is an open trade. Ticker is unique across the store.
type Position struct {
	Ticker      string  `json:"ticker"`
	EntryPrice  float64 `json:"entry_price"`
	CurrentStop float64 `json:"current_stop"`
	EntryDate   string  `json:"entry_date"` // YYYY-MM-DD
	DayCount    int     `json:"day_count"`
	Quantity    int     `json:"quantity"`
}

// FindPosition returns the position for ticker, if any.
func FindPosition(positions []Position, ticker string) (Position, bool) {
	for _, p := range positions {
		if p.Ticker == ticker {
			return p, true
		}
	}
	return Position{}, false
}
