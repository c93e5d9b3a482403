package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"earningsbot/src/model"
	"earningsbot/src/notify"
	"earningsbot/src/repository"
	"earningsbot/src/risk"
	"earningsbot/src/utils"
)

// ErrLiveTradingNotImplemented stops live mode before any order or store mutation.
var ErrLiveTradingNotImplemented = errors.New("live trading is not implemented")

type PositionStore interface {
	AddStrict(p model.Position) error
	Get(ticker string) (*model.Position, error)
	Remove(ticker string) error
	UpdateStop(ticker string, newStop float64) error
}

type TradeRecorder interface {
	Record(ctx context.Context, r model.OrderResult) error
}

type Executor struct {
	logger   *logrus.Entry
	cfg      Config
	store    PositionStore
	trades   TradeRecorder
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string
}

func NewExecutor(logger *logrus.Entry, cfg Config, store PositionStore, trades TradeRecorder, notifier notify.Notifier) *Executor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}

	return &Executor{
		logger:   logger,
		cfg:      cfg,
		store:    store,
		trades:   trades,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (e *Executor) Mode() string { return e.cfg.Mode }

// ExecutionResult lists what one ExecuteSignals call changed. Errors holds
// non-fatal problems such as a duplicate buy rejected by the store.
type ExecutionResult struct {
	Orders       []model.OrderResult
	Opened       []model.Position
	Closed       []string
	StopsUpdated []string
	Errors       []error
}

// PlaceOrder fills immediately at price in paper mode and journals the fill.
// Live mode fails with ErrLiveTradingNotImplemented and journals nothing.
func (e *Executor) PlaceOrder(ctx context.Context, ticker string, side model.Side, quantity int, price float64) (model.OrderResult, error) {
	if e.cfg.Mode == ModeLive {
		return model.OrderResult{}, ErrLiveTradingNotImplemented
	}

	result := model.OrderResult{
		OrderID:   e.newID(),
		Ticker:    ticker,
		Action:    side,
		Quantity:  quantity,
		FillPrice: price,
		Timestamp: e.now().UTC().Format(time.RFC3339),
		Mode:      e.cfg.Mode,
		Success:   true,
	}
	if err := e.trades.Record(ctx, result); err != nil {
		return result, fmt.Errorf("record %s %s: %w", side, ticker, err)
	}

	e.logger.WithFields(logrus.Fields{
		"order_id": result.OrderID,
		"ticker":   ticker,
		"side":     side,
		"quantity": quantity,
		"price":    price,
		"mode":     e.cfg.Mode,
	}).Info("order filled")

	return result, nil
}

// ExecuteSignals runs the buy pass over signals, then the sell/update pass over
// actions. prices supplies sell fill prices.
func (e *Executor) ExecuteSignals(ctx context.Context, signals []model.EntrySignal, actions []model.PositionAction, prices map[string]float64) (ExecutionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := ExecutionResult{}

	for _, signal := range signals {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("execution canceled: %w", err)
		}
		if err := e.executeBuy(ctx, signal, &result); err != nil {
			return result, err
		}
	}

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("execution canceled: %w", err)
		}
		if err := e.executeAction(ctx, action, prices, &result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *Executor) executeBuy(ctx context.Context, signal model.EntrySignal, result *ExecutionResult) error {
	if !signal.ShouldEnter {
		e.logger.WithFields(logrus.Fields{
			"ticker": signal.Ticker,
			"failed": signal.FailedFilters(),
		}).Debug("entry skipped")
		return nil
	}
	if signal.EntryPrice == nil || signal.InitialStop == nil {
		err := fmt.Errorf("entry signal for %s has no price or stop", signal.Ticker)
		result.Errors = append(result.Errors, err)
		e.logger.WithError(err).Error("entry signal incomplete")
		return nil
	}

	price, stop := *signal.EntryPrice, *signal.InitialStop
	quantity := risk.SharesForBudget(e.cfg.PositionSizeUSD, price)

	order, err := e.PlaceOrder(ctx, signal.Ticker, model.SideBuy, quantity, price)
	if err != nil {
		return err
	}
	result.Orders = append(result.Orders, order)

	position := model.Position{
		Ticker:      signal.Ticker,
		EntryPrice:  price,
		CurrentStop: stop,
		EntryDate:   utils.FormatDate(e.now().UTC()),
		DayCount:    0,
		Quantity:    quantity,
	}
	if err := e.store.AddStrict(position); err != nil {
		if errors.Is(err, repository.ErrPositionExists) {
			e.logger.WithField("ticker", signal.Ticker).Warn("position already open, buy not added to store")
			result.Errors = append(result.Errors, err)
			return nil
		}
		return fmt.Errorf("store position %s: %w", signal.Ticker, err)
	}
	result.Opened = append(result.Opened, position)

	e.notifier.Notify(ctx, fmt.Sprintf("BUY %s: %d shares @ $%.2f | stop $%.2f", signal.Ticker, quantity, price, stop))
	return nil
}

func (e *Executor) executeAction(ctx context.Context, action model.PositionAction, prices map[string]float64, result *ExecutionResult) error {
	switch action.Action {
	case model.ActionSell:
		return e.executeSell(ctx, action, prices, result)

	case model.ActionUpdateStop:
		if action.NewStop == nil {
			e.logger.WithField("ticker", action.Ticker).Warn("update_stop without a stop value")
			return nil
		}
		err := e.store.UpdateStop(action.Ticker, *action.NewStop)
		if errors.Is(err, repository.ErrStopNotRaised) {
			e.logger.WithFields(logrus.Fields{
				"ticker":   action.Ticker,
				"new_stop": *action.NewStop,
			}).Warn("stop not raised, stored stop is higher")
			return nil
		}
		if err != nil {
			return fmt.Errorf("update stop %s: %w", action.Ticker, err)
		}
		result.StopsUpdated = append(result.StopsUpdated, action.Ticker)
		e.logger.WithFields(logrus.Fields{
			"ticker":   action.Ticker,
			"new_stop": *action.NewStop,
		}).Info("trailing stop raised")
	}
	return nil
}

func (e *Executor) executeSell(ctx context.Context, action model.PositionAction, prices map[string]float64, result *ExecutionResult) error {
	position, err := e.store.Get(action.Ticker)
	if err != nil {
		return fmt.Errorf("load position %s: %w", action.Ticker, err)
	}
	quantity := 0
	if position != nil {
		quantity = position.Quantity
	}

	price, ok := prices[action.Ticker]
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"ticker":             action.Ticker,
			"fill_price_missing": true,
		}).Warn("no current price for sell, filling at 0")
	}

	order, err := e.PlaceOrder(ctx, action.Ticker, model.SideSell, quantity, price)
	if err != nil {
		return err
	}
	result.Orders = append(result.Orders, order)

	if err := e.store.Remove(action.Ticker); err != nil {
		return fmt.Errorf("remove position %s: %w", action.Ticker, err)
	}
	result.Closed = append(result.Closed, action.Ticker)

	msg := fmt.Sprintf("SELL %s: %d shares @ $%.2f (%s)", action.Ticker, quantity, price, action.Reason)
	if position != nil && position.EntryPrice > 0 && ok {
		msg += fmt.Sprintf(" | P&L %+.2f%%", (price/position.EntryPrice-1)*100)
	}
	if !ok {
		msg += " [fill price missing]"
	}
	e.notifier.Notify(ctx, msg)
	return nil
}
