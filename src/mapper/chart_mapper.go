package mapper

import (
	"time"

	"earningsbot/src/externalmodel"
	"earningsbot/src/model"

	logger "github.com/sirupsen/logrus"
)

// MapChartToBars converts a chart result into bars, dropping minutes without a close.
// When adjust is set and adjusted closes are present, OHLC values are scaled by
// adjclose/close so splits and dividends do not show up as price moves.
func MapChartToBars(res *externalmodel.YahooChartResult, adjust bool) []model.Bar {
	if res == nil || len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]

	var adj []*float64
	if adjust && len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.Bar, 0, len(res.Timestamp))
	skipped := 0
	for i, ts := range res.Timestamp {
		closeVal := at(q.Close, i)
		if closeVal == nil {
			skipped++
			continue
		}
		c := *closeVal
		o, h, l := orDefault(at(q.Open, i), c), orDefault(at(q.High, i), c), orDefault(at(q.Low, i), c)

		factor := 1.0
		if a := at(adj, i); a != nil && c != 0 {
			factor = *a / c
		}

		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o * factor,
			High:   h * factor,
			Low:    l * factor,
			Close:  c * factor,
			Volume: orDefault(at(q.Volume, i), 0),
		})
	}

	if skipped > 0 {
		logger.WithFields(logger.Fields{
			"symbol":  res.Meta.Symbol,
			"skipped": skipped,
		}).Debug("Dropped chart points without close")
	}
	return bars
}

// MapChartClassification extracts the listing venue and instrument type.
func MapChartClassification(res *externalmodel.YahooChartResult) model.Classification {
	if res == nil {
		return model.Classification{}
	}
	return model.Classification{
		Exchange:  res.Meta.ExchangeName,
		QuoteType: res.Meta.InstrumentType,
	}
}

func at(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
