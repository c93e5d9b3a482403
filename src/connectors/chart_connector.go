package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"earningsbot/src/externalmodel"
	"earningsbot/src/model"

	"github.com/go-resty/resty/v2"
)

const (
	chartProvider  = "chart"
	chartEndpoint  = "/v8/finance/chart/{symbol}"
	chartUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

	Interval1m = "1m"
	Interval1d = "1d"
)

// ChartQuery selects the bars returned by GetChart. Start is inclusive, End exclusive.
type ChartQuery struct {
	Interval       string
	Start          time.Time
	End            time.Time
	IncludePrePost bool
}

// ChartClient reads OHLCV bars and listing metadata from the Yahoo chart API.
type ChartClient struct {
	http *resty.Client
}

func NewChartClient(baseURL string) *ChartClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &ChartClient{
		http: NewRestyClient(baseURL, defaultTimeout).SetHeader("User-Agent", chartUserAgent),
	}
}

// GetChart returns the chart for symbol. Unknown symbols and empty results wrap
// model.ErrDataUnavailable.
func (c *ChartClient) GetChart(ctx context.Context, symbol string, q ChartQuery) (*externalmodel.YahooChartResult, error) {
	interval := q.Interval
	if interval == "" {
		interval = Interval1d
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", strings.ToUpper(symbol)).
		SetQueryParams(map[string]string{
			"interval":       interval,
			"period1":        strconv.FormatInt(q.Start.Unix(), 10),
			"period2":        strconv.FormatInt(q.End.Unix(), 10),
			"includePrePost": strconv.FormatBool(q.IncludePrePost),
			"events":         "div,split",
		}).
		Get(chartEndpoint)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, model.DataUnavailable("no chart for %s", symbol)
	}
	if resp.IsError() {
		return nil, newAPIError(chartProvider, chartEndpoint, resp)
	}

	var decoded externalmodel.YahooChartResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("chart %s: decode: %w", symbol, err)
	}
	if decoded.Chart.Error != nil {
		return nil, model.DataUnavailable("chart %s: %s", symbol, decoded.Chart.Error.Description)
	}
	if len(decoded.Chart.Result) == 0 {
		return nil, model.DataUnavailable("empty chart for %s", symbol)
	}
	return &decoded.Chart.Result[0], nil
}
