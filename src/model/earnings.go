package model

// Guidance is the forward guidance signal attached to an earnings report.
// The zero value is GuidanceUnknown.
type Guidance int

const (
	GuidanceUnknown Guidance = iota
	GuidanceNotWeak
	GuidanceWeak
)

func (g Guidance) String() string {
	switch g {
	case GuidanceNotWeak:
		return "not_weak"
	case GuidanceWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// Known reports whether guidance data was available.
func (g Guidance) Known() bool {
	return g == GuidanceNotWeak || g == GuidanceWeak
}

// GuidanceFromWeak builds a known guidance value.
func GuidanceFromWeak(weak bool) Guidance {
	if weak {
		return GuidanceWeak
	}
	return GuidanceNotWeak
}

// EarningsSurprise is a per-ticker snapshot taken at report time.
type EarningsSurprise struct {
	Ticker      string   `json:"ticker"`
	EPSActual   float64  `json:"eps_actual"`
	EPSEstimate float64  `json:"eps_estimate"`
	EPSBeatPct  float64  `json:"eps_beat_pct"`
	RevActual   float64  `json:"rev_actual"`
	RevEstimate float64  `json:"rev_estimate"`
	RevBeatPct  float64  `json:"rev_beat_pct"`
	Guidance    Guidance `json:"guidance"`
}

// NewEarningsSurprise derives both beat percentages from actual and estimate values.
func NewEarningsSurprise(ticker string, epsActual, epsEstimate, revActual, revEstimate float64, guidance Guidance) EarningsSurprise {
	return EarningsSurprise{
		Ticker:      ticker,
		EPSActual:   epsActual,
		EPSEstimate: epsEstimate,
		EPSBeatPct:  BeatPct(epsActual, epsEstimate),
		RevActual:   revActual,
		RevEstimate: revEstimate,
		RevBeatPct:  BeatPct(revActual, revEstimate),
		Guidance:    guidance,
	}
}

// BeatPct is (actual-estimate)/|estimate|, or zero when the estimate is zero.
func BeatPct(actual, estimate float64) float64 {
	if estimate == 0 {
		return 0
	}
	diff := actual - estimate
	if estimate < 0 {
		return diff / -estimate
	}
	return diff / estimate
}

// Earnings report timing relative to the regular session.
const (
	TimingBMO     = "bmo"
	TimingAMC     = "amc"
	TimingAll     = "all"
	TimingUnknown = "unknown"
)

// CalendarEntry is one row of the earnings calendar with consensus estimates.
type CalendarEntry struct {
	Ticker      string   `json:"ticker"`
	Date        string   `json:"date"`
	Timing      string   `json:"timing"`
	EPSEstimate *float64 `json:"eps_estimate,omitempty"`
	RevEstimate *float64 `json:"rev_estimate,omitempty"`
}
