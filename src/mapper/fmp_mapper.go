package mapper

import (
	"strings"

	"earningsbot/src/externalmodel"
	"earningsbot/src/model"
)

// MapFMPEarningToSurprise converts an FMP earnings row. Missing actuals and estimates
// count as zero. Guidance is weak when guidanceEps is below the EPS estimate and
// unknown when guidanceEps is absent.
func MapFMPEarningToSurprise(ticker string, r externalmodel.FMPEarning) model.EarningsSurprise {
	epsEstimate := valueOrZero(r.EPSEstimated)

	guidance := model.GuidanceUnknown
	if r.GuidanceEPS != nil {
		guidance = model.GuidanceFromWeak(*r.GuidanceEPS < epsEstimate)
	}

	return model.NewEarningsSurprise(
		strings.ToUpper(ticker),
		valueOrZero(r.EPSActual),
		epsEstimate,
		valueOrZero(r.RevenueActual),
		valueOrZero(r.RevenueEstimated),
		guidance,
	)
}

// NormalizeTiming maps the FMP time field to bmo, amc or unknown. A blank time is
// treated as after the close.
func NormalizeTiming(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case model.TimingBMO:
		return model.TimingBMO
	case model.TimingAMC, "":
		return model.TimingAMC
	default:
		return model.TimingUnknown
	}
}

// MatchesTiming reports whether a calendar time field satisfies the timing filter.
func MatchesTiming(raw, timing string) bool {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch timing {
	case model.TimingAll:
		return true
	case model.TimingAMC:
		return t == model.TimingAMC || t == ""
	default:
		return t == timing
	}
}

// MapFMPCalendarRecord converts a calendar row for date. ok is false when the row has no symbol.
func MapFMPCalendarRecord(date string, r externalmodel.FMPCalendarRecord) (model.CalendarEntry, bool) {
	if r.Symbol == "" {
		return model.CalendarEntry{}, false
	}
	return model.CalendarEntry{
		Ticker:      strings.ToUpper(r.Symbol),
		Date:        date,
		Timing:      NormalizeTiming(r.Time),
		EPSEstimate: copyFloat(r.EPSEstimated),
		RevEstimate: copyFloat(r.RevenueEstimated),
	}, true
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
