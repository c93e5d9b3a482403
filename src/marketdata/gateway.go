package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"earningsbot/src/connectors"
	"earningsbot/src/externalmodel"
	"earningsbot/src/mapper"
	"earningsbot/src/model"
	"earningsbot/src/risk"
	"earningsbot/src/utils"

	"github.com/sirupsen/logrus"
)

const (
	DefaultATRPeriod = 14

	earningsHistoryLimit = 10
	atrWarmupBars        = 10
	runupExtraBars       = 5
	preMarketLookback    = 5 * 24 * time.Hour
	sectorLookback       = 7 * 24 * time.Hour
	classifyLookback     = 5 * 24 * time.Hour
)

// EarningsSource is the fundamentals provider.
type EarningsSource interface {
	GetEarnings(ctx context.Context, symbol string, limit int) ([]externalmodel.FMPEarning, error)
	GetEarningsCalendar(ctx context.Context, from, to string) ([]externalmodel.FMPCalendarRecord, error)
	GetProfile(ctx context.Context, symbol string) (*externalmodel.FMPProfile, error)
}

// ChartSource is the price provider.
type ChartSource interface {
	GetChart(ctx context.Context, symbol string, q connectors.ChartQuery) (*externalmodel.YahooChartResult, error)
}

// Gateway answers every market data question the bot asks. Lookups that return
// nothing usable fail with an error wrapping model.ErrDataUnavailable.
type Gateway struct {
	logger   *logrus.Entry
	earnings EarningsSource
	charts   ChartSource
	now      func() time.Time
}

func NewGateway(logger *logrus.Entry, earnings EarningsSource, charts ChartSource) *Gateway {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Gateway{logger: logger, earnings: earnings, charts: charts, now: time.Now}
}

// NewGatewayFromConfig wires the FMP and chart HTTP clients.
func NewGatewayFromConfig(logger *logrus.Entry, cfg connectors.Config) *Gateway {
	return NewGateway(
		logger,
		connectors.NewFMPClient(cfg.FMPAPIKey, cfg.FMPBaseURL),
		connectors.NewChartClient(cfg.ChartBaseURL),
	)
}

// EarningsSurprise returns the most recent earnings record for ticker, or the record
// whose date starts with date when date is not empty.
func (g *Gateway) EarningsSurprise(ctx context.Context, ticker, date string) (model.EarningsSurprise, error) {
	records, err := g.earnings.GetEarnings(ctx, ticker, earningsHistoryLimit)
	if err != nil {
		return model.EarningsSurprise{}, err
	}
	if len(records) == 0 {
		return model.EarningsSurprise{}, model.DataUnavailable("no earnings data for %s", ticker)
	}

	record := records[0]
	if date != "" {
		found := false
		for _, r := range records {
			if strings.HasPrefix(r.Date, date) {
				record, found = r, true
				break
			}
		}
		if !found {
			return model.EarningsSurprise{}, model.DataUnavailable("no earnings for %s on %s", ticker, date)
		}
	}
	return mapper.MapFMPEarningToSurprise(ticker, record), nil
}

// EarningsCalendar returns the tickers reporting on date with the given timing
// (bmo, amc or all).
func (g *Gateway) EarningsCalendar(ctx context.Context, date, timing string) ([]string, error) {
	records, err := g.earnings.GetEarningsCalendar(ctx, date, date)
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(records))
	for _, r := range records {
		if r.Symbol == "" || !mapper.MatchesTiming(r.Time, timing) {
			continue
		}
		tickers = append(tickers, strings.ToUpper(r.Symbol))
	}
	g.logger.WithFields(logrus.Fields{"date": date, "timing": timing, "count": len(tickers)}).Info("earnings calendar loaded")
	return tickers, nil
}

// EarningsCalendarDetails returns every calendar row on date with timing and estimates.
func (g *Gateway) EarningsCalendarDetails(ctx context.Context, date string) ([]model.CalendarEntry, error) {
	records, err := g.earnings.GetEarningsCalendar(ctx, date, date)
	if err != nil {
		return nil, err
	}
	entries := make([]model.CalendarEntry, 0, len(records))
	for _, r := range records {
		if e, ok := mapper.MapFMPCalendarRecord(date, r); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// OHLCV returns up to the last days daily bars with adjusted prices.
func (g *Gateway) OHLCV(ctx context.Context, ticker string, days int) ([]model.Bar, error) {
	now := g.now()
	span := time.Duration(calendarDays(days+atrWarmupBars)) * 24 * time.Hour
	bars, err := g.bars(ctx, ticker, connectors.ChartQuery{
		Interval: connectors.Interval1d,
		Start:    now.Add(-span),
		End:      now.Add(24 * time.Hour),
	}, true)
	if err != nil {
		return nil, err
	}
	return model.TailBars(bars, days), nil
}

// LastClose returns the most recent daily close.
func (g *Gateway) LastClose(ctx context.Context, ticker string) (float64, error) {
	bars, err := g.OHLCV(ctx, ticker, 1)
	if err != nil {
		return 0, err
	}
	return bars[len(bars)-1].Close, nil
}

// ATR returns the current Average True Range over period daily bars.
func (g *Gateway) ATR(ctx context.Context, ticker string, period int) (float64, error) {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	bars, err := g.OHLCV(ctx, ticker, period+atrWarmupBars)
	if err != nil {
		return 0, err
	}
	return ComputeATR(bars, period)
}

// AfterHoursMove returns the after-hours move on date (YYYY-MM-DD, Eastern) relative
// to that day's regular close.
func (g *Gateway) AfterHoursMove(ctx context.Context, ticker, date string) (model.SessionMove, error) {
	day, err := utils.ParseDateIn(date, risk.EasternLocation())
	if err != nil {
		return model.SessionMove{}, err
	}
	bars, err := g.bars(ctx, ticker, connectors.ChartQuery{
		Interval:       connectors.Interval1m,
		Start:          day,
		End:            day.AddDate(0, 0, 1),
		IncludePrePost: true,
	}, false)
	if err != nil {
		return model.SessionMove{}, err
	}
	return AfterHoursMoveFromBars(bars)
}

// PreMarketMove returns the pre-market move on date relative to the prior regular close.
func (g *Gateway) PreMarketMove(ctx context.Context, ticker, date string) (model.SessionMove, error) {
	day, err := utils.ParseDateIn(date, risk.EasternLocation())
	if err != nil {
		return model.SessionMove{}, err
	}
	bars, err := g.bars(ctx, ticker, connectors.ChartQuery{
		Interval:       connectors.Interval1m,
		Start:          day.Add(-preMarketLookback),
		End:            day.AddDate(0, 0, 1),
		IncludePrePost: true,
	}, false)
	if err != nil {
		return model.SessionMove{}, err
	}
	return PreMarketMoveFromBars(bars, day)
}

// PriorRunup returns the close-to-close change over the last days daily bars.
func (g *Gateway) PriorRunup(ctx context.Context, ticker string, days int) (float64, error) {
	bars, err := g.OHLCV(ctx, ticker, days+runupExtraBars)
	if err != nil {
		return 0, err
	}
	return PriorRunupFromCloses(model.Closes(model.TailBars(bars, days)))
}

// SectorETF maps the ticker's sector to its ETF, falling back to SPY.
func (g *Gateway) SectorETF(ctx context.Context, ticker string) string {
	profile, err := g.earnings.GetProfile(ctx, ticker)
	if err != nil {
		g.logger.WithError(err).WithField("ticker", ticker).Warn("sector lookup failed, using fallback ETF")
		return FallbackETF
	}
	etf, ok := SectorToETF(profile.Sector)
	if !ok {
		g.logger.WithFields(logrus.Fields{"ticker": ticker, "sector": profile.Sector}).Warn("unknown sector, using fallback ETF")
	}
	return etf
}

// SectorMove returns the daily move of the ticker's sector ETF on date.
func (g *Gateway) SectorMove(ctx context.Context, ticker, date string) (float64, error) {
	etf := g.SectorETF(ctx, ticker)
	bars, err := g.sectorBars(ctx, etf, date)
	if err != nil {
		return 0, err
	}
	return DailyMoveOn(bars, date)
}

// SectorPreMarketMove is the sector move for a scan before the open, when date
// has no daily bar yet: the ETF's pre-market move on date, or its last
// completed session when the ETF printed nothing pre-market.
func (g *Gateway) SectorPreMarketMove(ctx context.Context, ticker, date string) (float64, error) {
	etf := g.SectorETF(ctx, ticker)
	move, err := g.PreMarketMove(ctx, etf, date)
	if err == nil {
		return move.Move, nil
	}
	if !errors.Is(err, model.ErrDataUnavailable) {
		return 0, fmt.Errorf("sector ETF %s: %w", etf, err)
	}
	g.logger.WithFields(logrus.Fields{"etf": etf, "date": date}).WithError(err).
		Debug("no ETF pre-market data, using last completed session")

	bars, err := g.sectorBars(ctx, etf, date)
	if err != nil {
		return 0, err
	}
	var last string
	for _, b := range bars {
		if d := utils.FormatDate(risk.EasternTime(b.Time)); d < date {
			last = d
		}
	}
	if last == "" {
		return 0, model.DataUnavailable("no %s session before %s", etf, date)
	}
	return DailyMoveOn(bars, last)
}

func (g *Gateway) sectorBars(ctx context.Context, etf, date string) ([]model.Bar, error) {
	day, err := utils.ParseDateIn(date, risk.EasternLocation())
	if err != nil {
		return nil, err
	}
	bars, err := g.bars(ctx, etf, connectors.ChartQuery{
		Interval: connectors.Interval1d,
		Start:    day.Add(-sectorLookback),
		End:      day.AddDate(0, 0, 1),
	}, true)
	if err != nil {
		return nil, fmt.Errorf("sector ETF %s: %w", etf, err)
	}
	return bars, nil
}

// Classify returns the listing exchange and quote type of ticker.
func (g *Gateway) Classify(ctx context.Context, ticker string) (model.Classification, error) {
	now := g.now()
	res, err := g.charts.GetChart(ctx, ticker, connectors.ChartQuery{
		Interval: connectors.Interval1d,
		Start:    now.Add(-classifyLookback),
		End:      now,
	})
	if err != nil {
		return model.Classification{}, err
	}
	return mapper.MapChartClassification(res), nil
}

// Eligible reports whether ticker trades on an allowed exchange with an allowed quote type.
func (g *Gateway) Eligible(ctx context.Context, ticker string, exchanges, quoteTypes []string) (bool, model.Classification, error) {
	c, err := g.Classify(ctx, ticker)
	if err != nil {
		return false, c, err
	}
	return contains(exchanges, c.Exchange) && contains(quoteTypes, c.QuoteType), c, nil
}

func (g *Gateway) bars(ctx context.Context, ticker string, q connectors.ChartQuery, adjust bool) ([]model.Bar, error) {
	res, err := g.charts.GetChart(ctx, ticker, q)
	if err != nil {
		return nil, err
	}
	bars := mapper.MapChartToBars(res, adjust)
	if len(bars) == 0 {
		return nil, model.DataUnavailable("no %s bars for %s", q.Interval, ticker)
	}
	return bars, nil
}

// calendarDays converts trading days to a calendar span with room for weekends and holidays.
func calendarDays(tradingDays int) int {
	return tradingDays*7/5 + 7
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
