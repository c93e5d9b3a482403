package model

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderResult records one simulated or real fill. Never mutated after creation.
type OrderResult struct {
	OrderID   string  `json:"order_id"`
	Ticker    string  `json:"ticker"`
	Action    Side    `json:"action"`
	Quantity  int     `json:"quantity"`
	FillPrice float64 `json:"fill_price"`
	Timestamp string  `json:"timestamp"` // RFC3339, UTC
	Mode      string  `json:"mode"`
	Success   bool    `json:"success"`
	Error     string  `json:"error,omitempty"`
}
