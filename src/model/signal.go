package model

// Entry filter names. Every EntrySignal carries all of them.
const (
	FilterEPSBeat    = "eps_beat"
	FilterRevBeat    = "rev_beat"
	FilterAHMove     = "ah_move"
	FilterPriorRunup = "prior_runup"
	FilterSectorETF  = "sector_etf"
	FilterGuidance   = "guidance"
	FilterCapacity   = "capacity"
)

// FilterNames lists the entry filters in reporting order.
var FilterNames = []string{
	FilterEPSBeat,
	FilterRevBeat,
	FilterAHMove,
	FilterPriorRunup,
	FilterSectorETF,
	FilterGuidance,
	FilterCapacity,
}

// EntrySignal is the entry decision for one candidate ticker.
// EntryPrice and InitialStop are set only when ShouldEnter is true.
type EntrySignal struct {
	Ticker        string          `json:"ticker"`
	ShouldEnter   bool            `json:"should_enter"`
	FiltersPassed map[string]bool `json:"filters_passed"`
	EntryPrice    *float64        `json:"entry_price,omitempty"`
	InitialStop   *float64        `json:"initial_stop,omitempty"`
}

// FailedFilters returns the names of failing filters in FilterNames order.
func (s EntrySignal) FailedFilters() []string {
	var failed []string
	for _, name := range FilterNames {
		if !s.FiltersPassed[name] {
			failed = append(failed, name)
		}
	}
	return failed
}

type ActionType string

const (
	ActionHold       ActionType = "hold"
	ActionSell       ActionType = "sell"
	ActionUpdateStop ActionType = "update_stop"
)

type Reason string

const (
	ReasonPriceUnavailable    Reason = "price_unavailable"
	ReasonStopHit             Reason = "stop_hit"
	ReasonMaxDaysReached      Reason = "max_days_reached"
	ReasonTrailingStopUpdated Reason = "trailing_stop_updated"
	ReasonNoAction            Reason = "no_action"
)

// PositionAction is the management decision for one open position.
// NewStop is set only for ActionUpdateStop.
type PositionAction struct {
	Ticker  string     `json:"ticker"`
	Action  ActionType `json:"action"`
	NewStop *float64   `json:"new_stop,omitempty"`
	Reason  Reason     `json:"reason"`
}
