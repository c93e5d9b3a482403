package decision

import (
	"earningsbot/src/model"
	"earningsbot/src/tp_sl"
)

// Engine evaluates entries and open positions. It performs no I/O and holds no
// state beyond its thresholds.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// EntryInput is the pre-fetched data for one candidate ticker.
type EntryInput struct {
	Ticker         string
	Surprise       model.EarningsSurprise
	AfterHoursMove float64
	PriorRunup     float64
	SectorMove     float64
	ATR            float64
	CurrentPrice   float64
}

// EvaluateEntry computes every filter independently and enters only when all pass.
func (e *Engine) EvaluateEntry(in EntryInput, openPositions []model.Position) model.EntrySignal {
	filters := map[string]bool{
		model.FilterEPSBeat:    in.Surprise.EPSBeatPct >= e.cfg.MinEPSBeatPct,
		model.FilterRevBeat:    in.Surprise.RevBeatPct > 0,
		model.FilterAHMove:     in.AfterHoursMove >= e.cfg.MinAHMovePct,
		model.FilterPriorRunup: in.PriorRunup <= e.cfg.MaxPriorRunupPct,
		model.FilterSectorETF:  in.SectorMove > e.cfg.SectorETFMin,
		model.FilterGuidance:   guidancePasses(in.Surprise.Guidance),
		model.FilterCapacity:   len(openPositions) < e.cfg.MaxPositions,
	}

	signal := model.EntrySignal{
		Ticker:        in.Ticker,
		ShouldEnter:   allPassed(filters),
		FiltersPassed: filters,
	}
	if signal.ShouldEnter {
		entry := in.CurrentPrice
		stop := tp_sl.InitialStop(in.CurrentPrice, in.ATR, e.cfg.ATRStopMultiplier)
		signal.EntryPrice = &entry
		signal.InitialStop = &stop
	}
	return signal
}

// EvaluatePositions returns one action per position, in input order.
// Rules are checked in priority order and the first match wins.
func (e *Engine) EvaluatePositions(positions []model.Position, prices, atrs map[string]float64) []model.PositionAction {
	actions := make([]model.PositionAction, 0, len(positions))
	for _, pos := range positions {
		actions = append(actions, e.evaluatePosition(pos, prices, atrs))
	}
	return actions
}

func (e *Engine) evaluatePosition(pos model.Position, prices, atrs map[string]float64) model.PositionAction {
	price, ok := prices[pos.Ticker]
	if !ok {
		return model.PositionAction{Ticker: pos.Ticker, Action: model.ActionHold, Reason: model.ReasonPriceUnavailable}
	}

	if price <= pos.CurrentStop {
		return model.PositionAction{Ticker: pos.Ticker, Action: model.ActionSell, Reason: model.ReasonStopHit}
	}

	if pos.DayCount >= e.cfg.HoldDays {
		return model.PositionAction{Ticker: pos.Ticker, Action: model.ActionSell, Reason: model.ReasonMaxDaysReached}
	}

	if atr, ok := atrs[pos.Ticker]; ok {
		if newStop, moved := tp_sl.NextTrailingStop(pos.CurrentStop, price, atr, e.cfg.ATRStopMultiplier); moved {
			return model.PositionAction{
				Ticker:  pos.Ticker,
				Action:  model.ActionUpdateStop,
				NewStop: &newStop,
				Reason:  model.ReasonTrailingStopUpdated,
			}
		}
	}

	return model.PositionAction{Ticker: pos.Ticker, Action: model.ActionHold, Reason: model.ReasonNoAction}
}

func guidancePasses(g model.Guidance) bool {
	return g != model.GuidanceWeak
}

func allPassed(filters map[string]bool) bool {
	for _, name := range model.FilterNames {
		if !filters[name] {
			return false
		}
	}
	return true
}
