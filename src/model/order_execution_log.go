package model

import "time"

const (
	OrderExecutionStatusFilled   = "filled"
	OrderExecutionStatusRejected = "rejected"
)

// OrderExecutionLog mirrors a trade log line into the database for querying.
type OrderExecutionLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrderID   string  `gorm:"size:64;uniqueIndex" json:"order_id"`
	Ticker    string  `gorm:"size:20;index" json:"ticker"`
	Side      string  `gorm:"size:10" json:"side"`
	Quantity  int     `json:"quantity"`
	FillPrice float64 `json:"fill_price"`
	Mode      string  `gorm:"size:10" json:"mode"`

	Status       string    `gorm:"size:50;not null" json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	ExecutedAt   time.Time `gorm:"index" json:"executed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (OrderExecutionLog) TableName() string {
	return "order_execution_logs"
}

// NewOrderExecutionLog converts a trade log record. An unparsable timestamp
// falls back to the zero time.
func NewOrderExecutionLog(r OrderResult) *OrderExecutionLog {
	executedAt, _ := time.Parse(time.RFC3339, r.Timestamp)
	status := OrderExecutionStatusFilled
	var errMsg *string
	if !r.Success {
		status = OrderExecutionStatusRejected
	}
	if r.Error != "" {
		msg := r.Error
		errMsg = &msg
	}
	return &OrderExecutionLog{
		OrderID:      r.OrderID,
		Ticker:       r.Ticker,
		Side:         string(r.Action),
		Quantity:     r.Quantity,
		FillPrice:    r.FillPrice,
		Mode:         r.Mode,
		Status:       status,
		ErrorMessage: errMsg,
		ExecutedAt:   executedAt.UTC(),
	}
}
