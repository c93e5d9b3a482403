package reporting

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"earningsbot/src/connectors"
	"earningsbot/src/model"
)

type props map[string]interface{}

type notionPage struct {
	ID         string `json:"id"`
	Properties map[string]struct {
		Title []struct {
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"title"`
	} `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor *string      `json:"next_cursor"`
}

// NotionReporter writes to the calendar and positions databases through the Notion REST API.
type NotionReporter struct {
	logger *logrus.Entry
	http   *resty.Client
	dbs    Databases
}

func NewNotionReporter(logger *logrus.Entry, cfg Config, dbs Databases) *NotionReporter {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	baseURL := cfg.NotionBaseURL
	if baseURL == "" {
		baseURL = "https://api.notion.com/v1"
	}
	return &NotionReporter{
		logger: logger.WithField("sink", "notion"),
		http: connectors.NewRestyClient(baseURL, cfg.NotionTimeout).
			SetAuthToken(cfg.NotionToken).
			SetHeader("Notion-Version", NotionVersion).
			SetHeader("Content-Type", "application/json"),
		dbs: dbs,
	}
}

// ClearCalendar archives every row of the calendar database and returns the count.
func (n *NotionReporter) ClearCalendar(ctx context.Context) (int, error) {
	if n.dbs.CalendarDBID == "" {
		n.logger.Warn("calendar_db_id missing from Notion config")
		return 0, nil
	}
	pages, err := n.query(ctx, n.dbs.CalendarDBID, nil)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, p := range pages {
		if err := n.archive(ctx, p.ID); err != nil {
			n.logger.WithError(err).WithField("page_id", p.ID).Error("Failed to archive calendar page")
			continue
		}
		archived++
	}
	n.logger.WithField("archived", archived).Info("Notion calendar cleared")
	return archived, nil
}

// WriteCalendar creates a row per new ticker on date and archives rows for tickers
// no longer listed. Scan columns stay empty until WriteScan.
func (n *NotionReporter) WriteCalendar(ctx context.Context, date string, entries []model.CalendarEntry) (int, int, error) {
	if n.dbs.CalendarDBID == "" {
		n.logger.Warn("calendar_db_id missing from Notion config")
		return 0, 0, nil
	}

	existing, err := n.pagesByTicker(ctx, n.dbs.CalendarDBID, dateFilter(date))
	if err != nil {
		n.logger.WithError(err).WithField("date", date).Error("Failed to query Notion calendar")
		existing = map[string]string{}
	}

	expected := make(map[string]bool, len(entries))
	for _, e := range entries {
		expected[e.Ticker] = true
	}

	archived := 0
	for ticker, pageID := range existing {
		if expected[ticker] {
			continue
		}
		if err := n.archive(ctx, pageID); err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{"ticker": ticker, "date": date}).Error("Failed to archive stale calendar row")
			continue
		}
		archived++
	}

	created := 0
	for _, e := range entries {
		if _, ok := existing[e.Ticker]; ok {
			continue
		}
		row := props{
			"Ticker":       titleProp(e.Ticker),
			"Date":         dateProp(e.Date),
			"Timing":       selectProp(e.Timing),
			"EPS Estimate": numberProp(e.EPSEstimate),
			"Rev Estimate": numberProp(e.RevEstimate),
		}
		if err := n.create(ctx, n.dbs.CalendarDBID, row); err != nil {
			n.logger.WithError(err).WithField("ticker", e.Ticker).Error("Failed to create calendar row")
			continue
		}
		created++
	}
	return created, archived, nil
}

// WriteScan fills scan results into the calendar rows of date, creating rows that
// the evening calendar run did not.
func (n *NotionReporter) WriteScan(ctx context.Context, scanType, date string, signals []model.EntrySignal, movePcts, epsBeatPcts map[string]float64) error {
	if n.dbs.CalendarDBID == "" {
		n.logger.Warn("calendar_db_id missing from Notion config")
		return nil
	}

	existing, err := n.pagesByTicker(ctx, n.dbs.CalendarDBID, dateFilter(date))
	if err != nil {
		return err
	}

	for _, sig := range signals {
		signal := "skip"
		if sig.ShouldEnter {
			signal = "BUY"
		}
		row := props{
			"Signal":     selectProp(signal),
			"EPS Beat %": pctProp(epsBeatPcts, sig.Ticker),
			"Move %":     pctProp(movePcts, sig.Ticker),
		}
		for _, name := range model.FilterNames {
			row[name] = map[string]bool{"checkbox": sig.FiltersPassed[name]}
		}
		if sig.EntryPrice != nil {
			row["Entry Price"] = numberProp(sig.EntryPrice)
		}
		if sig.InitialStop != nil {
			row["Stop Price"] = numberProp(sig.InitialStop)
		}

		if pageID, ok := existing[sig.Ticker]; ok {
			err = n.update(ctx, pageID, row)
		} else {
			row["Ticker"] = titleProp(sig.Ticker)
			row["Date"] = dateProp(date)
			row["Timing"] = selectProp(strings.ToLower(scanType))
			err = n.create(ctx, n.dbs.CalendarDBID, row)
		}
		if err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{"ticker": sig.Ticker, "scan": scanType}).Error("Failed to write scan row")
		}
	}
	return nil
}

// SyncPositions upserts open positions and archives rows of closed ones.
func (n *NotionReporter) SyncPositions(ctx context.Context, positions []model.Position) error {
	if n.dbs.PositionsDBID == "" {
		n.logger.Warn("positions_db_id missing from Notion config")
		return nil
	}

	existing, err := n.pagesByTicker(ctx, n.dbs.PositionsDBID, nil)
	if err != nil {
		return err
	}

	active := make(map[string]bool, len(positions))
	for _, p := range positions {
		active[p.Ticker] = true
	}
	for ticker, pageID := range existing {
		if active[ticker] {
			continue
		}
		if err := n.archive(ctx, pageID); err != nil {
			n.logger.WithError(err).WithField("ticker", ticker).Error("Failed to archive closed position")
		}
	}

	for _, p := range positions {
		entry, stop := p.EntryPrice, p.CurrentStop
		day, qty := float64(p.DayCount), float64(p.Quantity)
		row := props{
			"Ticker":      titleProp(p.Ticker),
			"Entry Price": numberProp(&entry),
			"Entry Date":  dateProp(p.EntryDate),
			"Stop":        numberProp(&stop),
			"Day":         numberProp(&day),
			"Qty":         numberProp(&qty),
		}
		if pageID, ok := existing[p.Ticker]; ok {
			err = n.update(ctx, pageID, row)
		} else {
			err = n.create(ctx, n.dbs.PositionsDBID, row)
		}
		if err != nil {
			n.logger.WithError(err).WithField("ticker", p.Ticker).Error("Failed to upsert position")
		}
	}
	return nil
}

func (n *NotionReporter) pagesByTicker(ctx context.Context, dbID string, filter interface{}) (map[string]string, error) {
	pages, err := n.query(ctx, dbID, filter)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pages))
	for _, p := range pages {
		if t := p.title("Ticker"); t != "" {
			out[t] = p.ID
		}
	}
	return out, nil
}

// query follows next_cursor until has_more is false.
func (n *NotionReporter) query(ctx context.Context, dbID string, filter interface{}) ([]notionPage, error) {
	var pages []notionPage
	var cursor *string
	for {
		body := map[string]interface{}{}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != nil {
			body["start_cursor"] = *cursor
		}

		var out notionQueryResponse
		if err := n.send(ctx, http.MethodPost, "/databases/"+dbID+"/query", body, &out); err != nil {
			return nil, err
		}
		pages = append(pages, out.Results...)
		if !out.HasMore || out.NextCursor == nil {
			return pages, nil
		}
		cursor = out.NextCursor
	}
}

func (n *NotionReporter) create(ctx context.Context, dbID string, row props) error {
	return n.send(ctx, http.MethodPost, "/pages", map[string]interface{}{
		"parent":     map[string]string{"database_id": dbID},
		"properties": row,
	}, nil)
}

func (n *NotionReporter) update(ctx context.Context, pageID string, row props) error {
	return n.send(ctx, http.MethodPatch, "/pages/"+pageID, map[string]interface{}{"properties": row}, nil)
}

func (n *NotionReporter) archive(ctx context.Context, pageID string) error {
	return n.send(ctx, http.MethodPatch, "/pages/"+pageID, map[string]bool{"archived": true}, nil)
}

func (n *NotionReporter) send(ctx context.Context, method, path string, body, out interface{}) error {
	req := n.http.R().SetContext(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("notion %s %s: %s: %s", method, path, resp.Status(), resp.String())
	}
	return nil
}

func (p notionPage) title(prop string) string {
	v, ok := p.Properties[prop]
	if !ok || len(v.Title) == 0 {
		return ""
	}
	return v.Title[0].Text.Content
}

func dateFilter(date string) map[string]interface{} {
	return map[string]interface{}{
		"property": "Date",
		"date":     map[string]string{"equals": date},
	}
}

func titleProp(v string) interface{} {
	return map[string]interface{}{
		"title": []interface{}{map[string]interface{}{"text": map[string]string{"content": v}}},
	}
}

func dateProp(v string) interface{} {
	return map[string]interface{}{"date": map[string]string{"start": v}}
}

func selectProp(v string) interface{} {
	return map[string]interface{}{"select": map[string]string{"name": v}}
}

func numberProp(v *float64) interface{} {
	if v == nil {
		return map[string]interface{}{"number": nil}
	}
	return map[string]interface{}{"number": *v}
}

// pctProp renders a fraction as a percentage rounded to 2 places (0.08 -> 8).
func pctProp(values map[string]float64, ticker string) interface{} {
	v, ok := values[ticker]
	if !ok {
		return numberProp(nil)
	}
	pct, _ := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return numberProp(&pct)
}
