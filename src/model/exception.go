package model

import "time"

// Exception is a failure worth keeping after the log line scrolls away:
// per-ticker data errors in a cycle, failed cycles, sink outages.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Where the error happened
	Service string `gorm:"size:100;index" json:"service"` // e.g. "orchestrator"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "scan_amc"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "AfterHoursMove"
	Ticker  string `gorm:"size:20;index" json:"ticker,omitempty"`

	Message string `gorm:"type:text" json:"message"`
	Stack   string `gorm:"type:text" json:"stack"`

	Level string `gorm:"size:20;index" json:"level"` // debug | info | warn | error | fatal

	// Extra context as a JSON document
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
