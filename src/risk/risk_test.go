package risk

import (
	"testing"
	"time"
)

func nyDate(year int, month time.Month, day, hour, minute int) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// fallback. still deterministic. hours will be interpreted as UTC
		return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestDetectSession(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want Session
	}{
		{name: "before pre-market", at: nyDate(2025, time.March, 4, 3, 59), want: SessionClosed},
		{name: "pre-market open", at: nyDate(2025, time.March, 4, 4, 0), want: SessionPreMarket},
		{name: "last pre-market minute", at: nyDate(2025, time.March, 4, 9, 29), want: SessionPreMarket},
		{name: "regular open", at: nyDate(2025, time.March, 4, 9, 30), want: SessionRegular},
		{name: "last regular minute", at: nyDate(2025, time.March, 4, 15, 59), want: SessionRegular},
		{name: "closing bar", at: nyDate(2025, time.March, 4, 16, 0), want: SessionClosed},
		{name: "after-hours", at: nyDate(2025, time.March, 4, 16, 1), want: SessionAfterHours},
		{name: "after-hours end inclusive", at: nyDate(2025, time.March, 4, 20, 0), want: SessionAfterHours},
		{name: "evening", at: nyDate(2025, time.March, 4, 20, 1), want: SessionClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSession(tt.at); got != tt.want {
				t.Fatalf("DetectSession(%s) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsTradingDay(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "regular Tuesday", at: nyDate(2025, time.March, 4, 12, 0), want: true},
		{name: "Saturday", at: nyDate(2025, time.March, 8, 12, 0), want: false},
		{name: "Sunday", at: nyDate(2025, time.March, 9, 12, 0), want: false},
		{name: "Christmas", at: nyDate(2025, time.December, 25, 12, 0), want: false},
		{name: "Thanksgiving", at: nyDate(2025, time.November, 27, 12, 0), want: false},
		{name: "Good Friday 2025", at: nyDate(2025, time.April, 18, 12, 0), want: false},
		{name: "Juneteenth 2025", at: nyDate(2025, time.June, 19, 12, 0), want: false},
		{name: "Independence Day observed Friday 2026", at: nyDate(2026, time.July, 3, 12, 0), want: false},
		{name: "MLK day 2025", at: nyDate(2025, time.January, 20, 12, 0), want: false},
		{name: "day after Thanksgiving trades", at: nyDate(2025, time.November, 28, 12, 0), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTradingDay(tt.at); got != tt.want {
				t.Fatalf("IsTradingDay(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestNextAndPreviousTradingDay(t *testing.T) {
	// Thursday before Good Friday 2025
	thu := nyDate(2025, time.April, 17, 19, 0)
	next := NextTradingDay(thu)
	if next.Format("2006-01-02") != "2025-04-21" {
		t.Fatalf("expected Monday 2025-04-21 after Good Friday weekend, got %s", next.Format("2006-01-02"))
	}

	prev := PreviousTradingDay(nyDate(2025, time.April, 21, 8, 0))
	if prev.Format("2006-01-02") != "2025-04-17" {
		t.Fatalf("expected Thursday 2025-04-17, got %s", prev.Format("2006-01-02"))
	}
}

func TestSharesForBudget(t *testing.T) {
	tests := []struct {
		budget, price float64
		want          int
	}{
		{budget: 1000, price: 100, want: 10},
		{budget: 1000, price: 1500, want: 1},
		{budget: 1000, price: 333.33, want: 3},
		{budget: 1000, price: 0.1, want: 10000},
		{budget: 1000, price: 0, want: 1},
	}

	for _, tt := range tests {
		if got := SharesForBudget(tt.budget, tt.price); got != tt.want {
			t.Fatalf("SharesForBudget(%.2f, %.2f) = %d, want %d", tt.budget, tt.price, got, tt.want)
		}
	}
}

func TestEasterSunday(t *testing.T) {
	cases := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
	}
	for year, want := range cases {
		if got := easterSunday(year).Format("2006-01-02"); got != want {
			t.Fatalf("easterSunday(%d) = %s, want %s", year, got, want)
		}
	}
}
