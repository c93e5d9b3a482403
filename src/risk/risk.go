package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// ----- session labels -----

type Session string

const (
	SessionPreMarket  Session = "pre_market"
	SessionRegular    Session = "regular"
	SessionAfterHours Session = "after_hours"
	SessionClosed     Session = "closed"

	DaysPerWeek          = 7
	ObservedShiftDays    = 1
	NewYearDay           = 1
	ThirdMondayOffset    = 2
	FourthThursdayOffset = 3
)

// minute-of-day bounds, inclusive, in New York time
const (
	preMarketStart  = 4 * 60     // 04:00
	preMarketEnd    = 9*60 + 29  // 09:29
	regularStart    = 9*60 + 30  // 09:30
	regularEnd      = 15*60 + 59 // 15:59
	afterHoursStart = 16*60 + 1  // 16:01
	afterHoursEnd   = 20 * 60    // 20:00
)

// ----- public API -----

// EasternTime converts t to America/New_York, or UTC when tzdata is missing.
func EasternTime(t time.Time) time.Time {
	return t.In(EasternLocation())
}

// EasternLocation returns America/New_York, or UTC when tzdata is missing.
func EasternLocation() *time.Location {
	nyLocation, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return nyLocation
}

// DetectSession classifies the New York wall-clock minute of t. The 16:00 bar belongs
// to neither the regular nor the after-hours window and reports SessionClosed.
func DetectSession(t time.Time) Session {
	et := EasternTime(t)
	m := et.Hour()*60 + et.Minute()
	switch {
	case m >= preMarketStart && m <= preMarketEnd:
		return SessionPreMarket
	case m >= regularStart && m <= regularEnd:
		return SessionRegular
	case m >= afterHoursStart && m <= afterHoursEnd:
		return SessionAfterHours
	default:
		return SessionClosed
	}
}

// IsTradingDay reports whether the New York calendar date of t is a weekday
// that is not an exchange holiday.
func IsTradingDay(t time.Time) bool {
	et := EasternTime(t)
	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(et)
}

// NextTradingDay returns midnight New York time of the first trading day after t.
func NextTradingDay(t time.Time) time.Time {
	d := startOfDay(EasternTime(t)).AddDate(0, 0, 1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PreviousTradingDay returns midnight New York time of the last trading day before t.
func PreviousTradingDay(t time.Time) time.Time {
	d := startOfDay(EasternTime(t)).AddDate(0, 0, -1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// SharesForBudget is floor(budget/price) with a floor of one share.
func SharesForBudget(budget, price float64) int {
	if price <= 0 {
		return 1
	}
	qty := decimal.NewFromFloat(budget).Div(decimal.NewFromFloat(price)).Floor().IntPart()
	if qty < 1 {
		return 1
	}
	return int(qty)
}

// ----- helpers -----

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isHoliday(t time.Time) bool {
	year := t.Year()

	// New Year's Day, Sunday observed on Monday. A Saturday New Year is not observed.
	newYearsDay := time.Date(year, time.January, NewYearDay, 0, 0, 0, 0, time.UTC)
	if newYearsDay.Weekday() == time.Sunday {
		newYearsDay = newYearsDay.AddDate(0, 0, ObservedShiftDays)
	}

	mlkDay := calculateSpecificMonday(year, time.January, ThirdMondayOffset)
	presidentsDay := calculateSpecificMonday(year, time.February, ThirdMondayOffset)
	goodFriday := easterSunday(year).AddDate(0, 0, -2)

	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	laborDay := calculateSpecificMonday(year, time.September, 0)
	thanksgivingDay := calculateSpecificThursday(year, time.November, FourthThursdayOffset)

	holidays := []time.Time{
		newYearsDay,
		mlkDay,
		presidentsDay,
		goodFriday,
		memorialDay,
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		laborDay,
		thanksgivingDay,
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}
	if year >= 2022 {
		holidays = append(holidays, observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)))
	}
	return isDateAmong(t, holidays)
}

// observed shifts a fixed-date holiday off the weekend.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -ObservedShiftDays)
	case time.Sunday:
		return d.AddDate(0, 0, ObservedShiftDays)
	default:
		return d
	}
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// calculateSpecificMonday calculates the specific Monday of a month (like the third Monday).
func calculateSpecificMonday(year int, month time.Month, mondayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+mondayOffset*DaysPerWeek)
}

// calculateSpecificThursday calculates the specific Thursday of a month (like the fourth Thursday).
func calculateSpecificThursday(year int, month time.Month, thursdayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Thursday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+thursdayOffset*DaysPerWeek)
}

// isDateAmong checks if the given date matches any date in the list.
func isDateAmong(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		if t.Format("2006-01-02") == d.Format("2006-01-02") {
			return true
		}
	}
	return false
}
