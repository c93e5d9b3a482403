package marketdata

import (
	"testing"
	"time"

	"earningsbot/src/model"
	"earningsbot/src/risk"

	"github.com/stretchr/testify/require"
)

func et(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04", s, risk.EasternLocation())
	require.NoError(t, err)
	return v.UTC()
}

func TestComputeATR(t *testing.T) {
	bars := []model.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 13, Low: 10, Close: 12},
	}
	atr, err := ComputeATR(bars, 2)
	require.NoError(t, err)
	require.InDelta(t, 2.5, atr, 1e-9)

	single, err := ComputeATR(bars[:1], 14)
	require.NoError(t, err)
	require.InDelta(t, 2.0, single, 1e-9)

	_, err = ComputeATR(nil, 14)
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestComputeATRGapUsesPreviousClose(t *testing.T) {
	bars := []model.Bar{
		{High: 10, Low: 9, Close: 10},
		{High: 20, Low: 19, Close: 19.5},
	}
	atr, err := ComputeATR(bars, 1)
	require.NoError(t, err)
	require.InDelta(t, 10.0, atr, 1e-9)
}

func TestPriorRunupFromCloses(t *testing.T) {
	runup, err := PriorRunupFromCloses([]float64{100, 103, 110})
	require.NoError(t, err)
	require.InDelta(t, 0.10, runup, 1e-9)

	_, err = PriorRunupFromCloses([]float64{100})
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestAfterHoursMoveFromBars(t *testing.T) {
	bars := []model.Bar{
		{Time: et(t, "2026-10-15 09:30"), Close: 98},
		{Time: et(t, "2026-10-15 15:59"), Close: 100},
		{Time: et(t, "2026-10-15 16:00"), Close: 101},
		{Time: et(t, "2026-10-15 16:30"), Close: 104},
		{Time: et(t, "2026-10-15 19:59"), Close: 105},
	}
	move, err := AfterHoursMoveFromBars(bars)
	require.NoError(t, err)
	require.InDelta(t, 0.05, move.Move, 1e-9)
	require.Equal(t, 105.0, move.LastPrice)
	require.Equal(t, 100.0, move.ReferenceClose)
}

func TestAfterHoursMoveMissingSession(t *testing.T) {
	bars := []model.Bar{{Time: et(t, "2026-10-15 15:59"), Close: 100}}
	_, err := AfterHoursMoveFromBars(bars)
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestPreMarketMoveFromBars(t *testing.T) {
	day := et(t, "2026-10-15 00:00")
	bars := []model.Bar{
		{Time: et(t, "2026-10-14 15:59"), Close: 50},
		{Time: et(t, "2026-10-14 17:00"), Close: 51},
		{Time: et(t, "2026-10-15 07:00"), Close: 54},
		{Time: et(t, "2026-10-15 09:29"), Close: 55},
		{Time: et(t, "2026-10-15 10:00"), Close: 60},
	}
	move, err := PreMarketMoveFromBars(bars, day)
	require.NoError(t, err)
	require.InDelta(t, 0.10, move.Move, 1e-9)
	require.Equal(t, 55.0, move.LastPrice)

	_, err = PreMarketMoveFromBars(bars[2:], day)
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestDailyMoveOn(t *testing.T) {
	bars := []model.Bar{
		{Time: et(t, "2026-10-13 09:30"), Close: 100},
		{Time: et(t, "2026-10-14 09:30"), Close: 102},
		{Time: et(t, "2026-10-15 09:30"), Close: 99.96},
	}
	move, err := DailyMoveOn(bars, "2026-10-14")
	require.NoError(t, err)
	require.InDelta(t, 0.02, move, 1e-9)

	_, err = DailyMoveOn(bars, "2026-10-13")
	require.ErrorIs(t, err, model.ErrDataUnavailable)
	_, err = DailyMoveOn(bars, "2026-10-16")
	require.ErrorIs(t, err, model.ErrDataUnavailable)
	_, err = DailyMoveOn(bars[:1], "2026-10-13")
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestSectorToETF(t *testing.T) {
	etf, ok := SectorToETF("Technology")
	require.True(t, ok)
	require.Equal(t, "XLK", etf)

	etf, ok = SectorToETF("Shell Companies")
	require.False(t, ok)
	require.Equal(t, FallbackETF, etf)
}
