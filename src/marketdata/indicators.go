package marketdata

import (
	"math"
	"time"

	"earningsbot/src/model"
	"earningsbot/src/risk"
	"earningsbot/src/utils"
)

// ComputeATR returns the last value of the Average True Range using Wilder smoothing
// (alpha = 1/period, seeded with the first true range). The first bar has no previous
// close, so its true range is high-low.
func ComputeATR(bars []model.Bar, period int) (float64, error) {
	if len(bars) == 0 {
		return 0, model.DataUnavailable("no bars for ATR")
	}
	if period <= 0 {
		period = DefaultATRPeriod
	}
	alpha := 1.0 / float64(period)

	atr := bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		atr = alpha*trueRange(bars[i], bars[i-1].Close) + (1-alpha)*atr
	}
	return atr, nil
}

func trueRange(b model.Bar, prevClose float64) float64 {
	return math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}

// PriorRunupFromCloses is last/first - 1 over closes.
func PriorRunupFromCloses(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, model.DataUnavailable("need at least 2 closes, got %d", len(closes))
	}
	first := closes[0]
	if first == 0 {
		return 0, model.DataUnavailable("zero first close")
	}
	return closes[len(closes)-1]/first - 1, nil
}

// AfterHoursMoveFromBars compares the last after-hours price (16:01-20:00 ET) with the
// last regular-session close (09:30-15:59 ET).
func AfterHoursMoveFromBars(bars []model.Bar) (model.SessionMove, error) {
	var regular, afterHours *model.Bar
	for i := range bars {
		switch risk.DetectSession(bars[i].Time) {
		case risk.SessionRegular:
			regular = &bars[i]
		case risk.SessionAfterHours:
			afterHours = &bars[i]
		}
	}
	if regular == nil || afterHours == nil {
		return model.SessionMove{}, model.DataUnavailable("insufficient session data")
	}
	return newSessionMove(afterHours.Close, regular.Close)
}

// PreMarketMoveFromBars compares the last pre-market price (04:00-09:29 ET) on day with
// the last regular-session close on any earlier date in bars.
func PreMarketMoveFromBars(bars []model.Bar, day time.Time) (model.SessionMove, error) {
	target := utils.FormatDate(risk.EasternTime(day))

	var priorRegular, preMarket *model.Bar
	for i := range bars {
		barDate := utils.FormatDate(risk.EasternTime(bars[i].Time))
		session := risk.DetectSession(bars[i].Time)
		switch {
		case barDate < target && session == risk.SessionRegular:
			priorRegular = &bars[i]
		case barDate == target && session == risk.SessionPreMarket:
			preMarket = &bars[i]
		}
	}
	if priorRegular == nil {
		return model.SessionMove{}, model.DataUnavailable("no prior regular session data")
	}
	if preMarket == nil {
		return model.SessionMove{}, model.DataUnavailable("no pre-market data on %s", target)
	}
	return newSessionMove(preMarket.Close, priorRegular.Close)
}

// DailyMoveOn returns close(date)/close(previous bar) - 1 for daily bars.
func DailyMoveOn(bars []model.Bar, date string) (float64, error) {
	if len(bars) < 2 {
		return 0, model.DataUnavailable("need at least 2 daily bars, got %d", len(bars))
	}
	for i := range bars {
		if utils.FormatDate(risk.EasternTime(bars[i].Time)) != date {
			continue
		}
		if i == 0 {
			return 0, model.DataUnavailable("no prior day before %s", date)
		}
		prev := bars[i-1].Close
		if prev == 0 {
			return 0, model.DataUnavailable("zero prior close before %s", date)
		}
		return bars[i].Close/prev - 1, nil
	}
	return 0, model.DataUnavailable("no bar on %s", date)
}

func newSessionMove(last, reference float64) (model.SessionMove, error) {
	if reference == 0 {
		return model.SessionMove{}, model.DataUnavailable("zero reference close")
	}
	return model.SessionMove{
		Move:           last/reference - 1,
		LastPrice:      last,
		ReferenceClose: reference,
	}, nil
}
