package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"earningsbot/src/decision"
	"earningsbot/src/model"
	"earningsbot/src/notify"
	"earningsbot/src/reporting"
	"earningsbot/src/repository"
	"earningsbot/src/risk"
	"earningsbot/src/strategy"
	"earningsbot/src/utils"
)

const service = "orchestrator"

// MarketData is the subset of the market data gateway the cycles use.
type MarketData interface {
	EarningsCalendar(ctx context.Context, date, timing string) ([]string, error)
	EarningsCalendarDetails(ctx context.Context, date string) ([]model.CalendarEntry, error)
	EarningsSurprise(ctx context.Context, ticker, date string) (model.EarningsSurprise, error)
	AfterHoursMove(ctx context.Context, ticker, date string) (model.SessionMove, error)
	PreMarketMove(ctx context.Context, ticker, date string) (model.SessionMove, error)
	PriorRunup(ctx context.Context, ticker string, days int) (float64, error)
	SectorMove(ctx context.Context, ticker, date string) (float64, error)
	SectorPreMarketMove(ctx context.Context, ticker, date string) (float64, error)
	ATR(ctx context.Context, ticker string, period int) (float64, error)
	LastClose(ctx context.Context, ticker string) (float64, error)
	Eligible(ctx context.Context, ticker string, exchanges, quoteTypes []string) (bool, model.Classification, error)
}

type PositionStore interface {
	Load() ([]model.Position, error)
	Save(positions []model.Position) error
}

type SignalExecutor interface {
	ExecuteSignals(ctx context.Context, signals []model.EntrySignal, actions []model.PositionAction, prices map[string]float64) (strategy.ExecutionResult, error)
}

// Deps are the collaborators of an Orchestrator. Notifier, Reporter and
// Exceptions may be left nil.
type Deps struct {
	Engine     *decision.Engine
	Market     MarketData
	Store      PositionStore
	Executor   SignalExecutor
	Notifier   notify.Notifier
	Reporter   reporting.Reporter
	Exceptions *repository.ExceptionRepository
}

// Orchestrator runs the scan, update and calendar cycles. Per-ticker failures are
// logged and skipped; only a failed cycle prerequisite aborts a cycle.
type Orchestrator struct {
	logger *logrus.Entry
	cfg    Config
	deps   Deps
	now    func() time.Time
	// cycles never overlap, whether fired by the scheduler or the admin API
	mu sync.Mutex
}

func NewOrchestrator(logger *logrus.Entry, cfg Config, deps Deps) *Orchestrator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Noop{}
	}
	if deps.Reporter == nil {
		deps.Reporter = reporting.Noop{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Orchestrator{logger: logger, cfg: cfg, deps: deps, now: time.Now}
}

type ScanReport struct {
	Timing     string                   `json:"timing"`
	Date       string                   `json:"date"`
	Candidates int                      `json:"candidates"`
	Eligible   []string                 `json:"eligible"`
	Signals    []model.EntrySignal      `json:"signals"`
	Skipped    map[string]string        `json:"skipped,omitempty"`
	Execution  strategy.ExecutionResult `json:"-"`
}

// Bought lists the tickers that were opened in this scan.
func (r ScanReport) Bought() []string {
	out := make([]string, 0, len(r.Execution.Opened))
	for _, p := range r.Execution.Opened {
		out = append(out, p.Ticker)
	}
	return out
}

type UpdateReport struct {
	Positions int                      `json:"positions"`
	Actions   []model.PositionAction   `json:"actions"`
	Execution strategy.ExecutionResult `json:"-"`
}

type CalendarReport struct {
	Date     string                `json:"date"`
	Entries  []model.CalendarEntry `json:"entries"`
	Created  int                   `json:"created"`
	Archived int                   `json:"archived"`
}

// RunScan evaluates today's reporters for timing amc (after the close) or bmo
// (before the open) and buys the ones that pass every filter.
func (o *Orchestrator) RunScan(ctx context.Context, timing string) (ScanReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	timing = strings.ToLower(timing)
	today := utils.FormatDate(risk.EasternTime(o.now()))
	report := ScanReport{Timing: timing, Date: today, Skipped: map[string]string{}}
	module := "scan_" + timing
	log := o.logger.WithFields(logrus.Fields{"cycle": module, "date": today})

	if timing != model.TimingAMC && timing != model.TimingBMO {
		return report, fmt.Errorf("unknown scan timing %q", timing)
	}
	log.Info("scan cycle started")

	tickers, err := o.deps.Market.EarningsCalendar(ctx, today, timing)
	if err != nil {
		log.WithError(err).Error("failed to fetch earnings calendar")
		Capture(ctx, o.deps.Exceptions, service, module, "EarningsCalendar", "error", err, nil)
		return report, fmt.Errorf("earnings calendar: %w", err)
	}
	report.Candidates = len(tickers)
	if len(tickers) == 0 {
		log.Info("no earnings reports for this session")
		return report, nil
	}

	report.Eligible = o.filterEligible(ctx, tickers)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	positions, err := o.deps.Store.Load()
	if err != nil {
		return report, fmt.Errorf("load positions: %w", err)
	}

	held := append([]model.Position(nil), positions...)
	engine := o.deps.Engine
	movePcts := map[string]float64{}
	epsBeatPcts := map[string]float64{}
	for _, ticker := range report.Eligible {
		in, err := o.entryInput(ctx, ticker, today, timing)
		if err != nil {
			var se *stepError
			method := ""
			if errors.As(err, &se) {
				method = se.method
			}
			report.Skipped[ticker] = err.Error()
			Capture(ctx, o.deps.Exceptions, service, module, method, "warn", err, map[string]interface{}{"ticker": ticker, "date": today})
			continue
		}

		signal := engine.EvaluateEntry(in, held)
		report.Signals = append(report.Signals, signal)
		if signal.ShouldEnter {
			// approved entries take a slot before the next candidate is checked
			held = append(held, model.Position{Ticker: ticker, EntryPrice: *signal.EntryPrice, CurrentStop: *signal.InitialStop})
		}
		movePcts[ticker] = in.AfterHoursMove
		epsBeatPcts[ticker] = in.Surprise.EPSBeatPct

		log.WithFields(logrus.Fields{
			"ticker":       ticker,
			"should_enter": signal.ShouldEnter,
			"filters":      signal.FiltersPassed,
		}).Info("entry evaluated")
	}

	report.Execution, err = o.deps.Executor.ExecuteSignals(ctx, report.Signals, nil, nil)
	if err != nil {
		log.WithError(err).Error("execution failed")
		return report, err
	}

	if err := o.deps.Reporter.WriteScan(ctx, strings.ToUpper(timing), today, report.Signals, movePcts, epsBeatPcts); err != nil {
		log.WithError(err).Warn("failed to report scan")
	}
	o.deps.Notifier.Notify(ctx, scanSummary(report))

	log.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"eligible":   len(report.Eligible),
		"evaluated":  len(report.Signals),
		"bought":     len(report.Execution.Opened),
	}).Info("scan cycle finished")
	return report, nil
}

type stepError struct {
	method string
	err    error
}

func (e *stepError) Error() string { return e.method + ": " + e.err.Error() }
func (e *stepError) Unwrap() error { return e.err }

func step(method string, err error) error {
	return &stepError{method: method, err: err}
}

// entryInput gathers the data EvaluateEntry needs. The reaction move and entry price
// come from the after-hours session for amc and the pre-market session for bmo.
// AfterHoursMove carries the session move for both timings.
func (o *Orchestrator) entryInput(ctx context.Context, ticker, date, timing string) (decision.EntryInput, error) {
	m := o.deps.Market
	in := decision.EntryInput{Ticker: ticker}

	surprise, err := m.EarningsSurprise(ctx, ticker, date)
	if err != nil {
		return in, step("EarningsSurprise", err)
	}
	in.Surprise = surprise

	if timing == model.TimingBMO {
		move, err := m.PreMarketMove(ctx, ticker, date)
		if err != nil {
			return in, step("PreMarketMove", err)
		}
		in.AfterHoursMove, in.CurrentPrice = move.Move, move.LastPrice
	} else {
		move, err := m.AfterHoursMove(ctx, ticker, date)
		if err != nil {
			return in, step("AfterHoursMove", err)
		}
		in.AfterHoursMove = move.Move
		if in.CurrentPrice, err = m.LastClose(ctx, ticker); err != nil {
			return in, step("LastClose", err)
		}
	}

	if in.PriorRunup, err = m.PriorRunup(ctx, ticker, o.deps.Engine.Config().LookbackDays); err != nil {
		return in, step("PriorRunup", err)
	}
	// before the open date has no daily bar yet
	if timing == model.TimingBMO {
		if in.SectorMove, err = m.SectorPreMarketMove(ctx, ticker, date); err != nil {
			return in, step("SectorPreMarketMove", err)
		}
	} else if in.SectorMove, err = m.SectorMove(ctx, ticker, date); err != nil {
		return in, step("SectorMove", err)
	}
	if in.ATR, err = m.ATR(ctx, ticker, o.cfg.ATRPeriod); err != nil {
		return in, step("ATR", err)
	}
	return in, nil
}

// filterEligible classifies tickers on a bounded worker pool and returns the
// allowed ones sorted. Lookup failures exclude the ticker.
func (o *Orchestrator) filterEligible(ctx context.Context, tickers []string) []string {
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		g    errgroup.Group
	)
	g.SetLimit(o.cfg.Workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ok, cls, err := o.deps.Market.Eligible(ctx, ticker, o.cfg.AllowedExchanges, o.cfg.AllowedQuoteTypes)
			if err != nil {
				o.logger.WithError(err).WithField("ticker", ticker).Warn("eligibility lookup failed")
				return nil
			}
			if !ok {
				o.logger.WithFields(logrus.Fields{
					"ticker":     ticker,
					"exchange":   cls.Exchange,
					"quote_type": cls.QuoteType,
				}).Debug("ticker not eligible")
				return nil
			}
			mu.Lock()
			seen[ticker] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RunUpdate ages every open position by one day, then sells, ratchets stops or holds.
func (o *Orchestrator) RunUpdate(ctx context.Context) (UpdateReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	log := o.logger.WithField("cycle", "update")
	report := UpdateReport{}

	positions, err := o.deps.Store.Load()
	if err != nil {
		return report, fmt.Errorf("load positions: %w", err)
	}
	report.Positions = len(positions)
	if len(positions) == 0 {
		log.Info("no open positions to manage")
		return report, nil
	}

	prices := map[string]float64{}
	atrs := map[string]float64{}
	for i := range positions {
		positions[i].DayCount++
		ticker := positions[i].Ticker

		if price, err := o.deps.Market.LastClose(ctx, ticker); err != nil {
			Capture(ctx, o.deps.Exceptions, service, "update", "LastClose", "warn", err, map[string]interface{}{"ticker": ticker})
		} else {
			prices[ticker] = price
		}
		if atr, err := o.deps.Market.ATR(ctx, ticker, o.cfg.ATRPeriod); err != nil {
			Capture(ctx, o.deps.Exceptions, service, "update", "ATR", "warn", err, map[string]interface{}{"ticker": ticker})
		} else {
			atrs[ticker] = atr
		}
	}

	if err := o.deps.Store.Save(positions); err != nil {
		return report, fmt.Errorf("save day counts: %w", err)
	}

	report.Actions = o.deps.Engine.EvaluatePositions(positions, prices, atrs)
	report.Execution, err = o.deps.Executor.ExecuteSignals(ctx, nil, report.Actions, prices)
	if err != nil {
		log.WithError(err).Error("execution failed")
		return report, err
	}

	if remaining, err := o.deps.Store.Load(); err != nil {
		log.WithError(err).Warn("failed to reload positions for reporting")
	} else if err := o.deps.Reporter.SyncPositions(ctx, remaining); err != nil {
		log.WithError(err).Warn("failed to sync positions")
	}
	o.deps.Notifier.Notify(ctx, updateSummary(report))

	log.WithFields(logrus.Fields{
		"positions": report.Positions,
		"sold":      len(report.Execution.Closed),
		"stops":     len(report.Execution.StopsUpdated),
	}).Info("update cycle finished")
	return report, nil
}

// RunCalendar previews the next trading day's eligible reporters that have an
// EPS estimate.
func (o *Orchestrator) RunCalendar(ctx context.Context) (CalendarReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	date := utils.FormatDate(risk.NextTradingDay(o.now()))
	report := CalendarReport{Date: date}
	log := o.logger.WithFields(logrus.Fields{"cycle": "calendar", "date": date})

	entries, err := o.deps.Market.EarningsCalendarDetails(ctx, date)
	if err != nil {
		Capture(ctx, o.deps.Exceptions, service, "calendar", "EarningsCalendarDetails", "error", err, map[string]interface{}{"date": date})
		return report, fmt.Errorf("earnings calendar: %w", err)
	}

	byTicker := map[string]model.CalendarEntry{}
	var tickers []string
	for _, e := range entries {
		if e.EPSEstimate == nil {
			continue
		}
		if _, dup := byTicker[e.Ticker]; dup {
			continue
		}
		byTicker[e.Ticker] = e
		tickers = append(tickers, e.Ticker)
	}

	for _, t := range o.filterEligible(ctx, tickers) {
		report.Entries = append(report.Entries, byTicker[t])
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Created, report.Archived, err = o.deps.Reporter.WriteCalendar(ctx, date, report.Entries)
	if err != nil {
		log.WithError(err).Warn("failed to write calendar")
	}
	o.deps.Notifier.Notify(ctx, calendarSummary(report))

	log.WithFields(logrus.Fields{
		"listed":   len(entries),
		"kept":     len(report.Entries),
		"created":  report.Created,
		"archived": report.Archived,
	}).Info("calendar cycle finished")
	return report, nil
}

// ResetCalendar archives every calendar row in the reporter.
func (o *Orchestrator) ResetCalendar(ctx context.Context) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n, err := o.deps.Reporter.ClearCalendar(ctx)
	if err != nil {
		return n, fmt.Errorf("clear calendar: %w", err)
	}
	o.logger.WithField("archived", n).Info("calendar reset")
	return n, nil
}

func scanSummary(r ScanReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s scan %s: %d candidates, %d eligible, %d evaluated",
		strings.ToUpper(r.Timing), r.Date, r.Candidates, len(r.Eligible), len(r.Signals))
	if bought := r.Bought(); len(bought) > 0 {
		fmt.Fprintf(&b, ", bought %s", strings.Join(bought, ", "))
	} else {
		b.WriteString(", no entries")
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, " (%d skipped on data errors)", len(r.Skipped))
	}
	return b.String()
}

func updateSummary(r UpdateReport) string {
	counts := map[model.ActionType]int{}
	for _, a := range r.Actions {
		counts[a.Action]++
	}
	return fmt.Sprintf("Position update: %d open, %d sold, %d stops raised, %d held",
		r.Positions, counts[model.ActionSell], counts[model.ActionUpdateStop], counts[model.ActionHold])
}

func calendarSummary(r CalendarReport) string {
	counts := map[string]int{}
	for _, e := range r.Entries {
		counts[e.Timing]++
	}
	return fmt.Sprintf("Earnings calendar %s: %d tickers (%d bmo, %d amc)",
		r.Date, len(r.Entries), counts[model.TimingBMO], counts[model.TimingAMC])
}
