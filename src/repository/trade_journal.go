package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

// OrderMirror receives a copy of every journaled trade.
type OrderMirror interface {
	MirrorOrder(ctx context.Context, r model.OrderResult) error
}

// TradeJournal records fills in the trade log file and copies them to optional
// mirrors. The file is the record of truth; mirror failures are only logged.
type TradeJournal struct {
	file    *TradeLogFile
	mirrors []OrderMirror
}

func NewTradeJournal(file *TradeLogFile, mirrors ...OrderMirror) *TradeJournal {
	kept := make([]OrderMirror, 0, len(mirrors))
	for _, m := range mirrors {
		if m != nil {
			kept = append(kept, m)
		}
	}
	return &TradeJournal{file: file, mirrors: kept}
}

func (j *TradeJournal) Record(ctx context.Context, r model.OrderResult) error {
	if err := j.file.Append(r); err != nil {
		return err
	}

	for _, m := range j.mirrors {
		if err := m.MirrorOrder(ctx, r); err != nil {
			logger.WithFields(map[string]interface{}{
				"repo":     "TradeJournal",
				"order_id": r.OrderID,
				"ticker":   r.Ticker,
			}).WithError(err).Warn("Failed to mirror trade")
		}
	}
	return nil
}

func (j *TradeJournal) Tail(n int) ([]model.OrderResult, error) {
	return j.file.Tail(n)
}
