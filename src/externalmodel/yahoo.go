package externalmodel

// YahooChartResponse is the envelope of /v8/finance/chart/{symbol}.
type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *YahooChartError   `json:"error"`
	} `json:"chart"`
}

type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type YahooChartResult struct {
	Meta       YahooChartMeta  `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators YahooIndicators `json:"indicators"`
}

type YahooChartMeta struct {
	Currency             string  `json:"currency"`
	Symbol               string  `json:"symbol"`
	ExchangeName         string  `json:"exchangeName"`
	FullExchangeName     string  `json:"fullExchangeName"`
	InstrumentType       string  `json:"instrumentType"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
	DataGranularity      string  `json:"dataGranularity"`
}

// YahooIndicators holds parallel arrays aligned with Timestamp. Entries are null
// for minutes without trades.
type YahooIndicators struct {
	Quote []struct {
		Open   []*float64 `json:"open"`
		High   []*float64 `json:"high"`
		Low    []*float64 `json:"low"`
		Close  []*float64 `json:"close"`
		Volume []*float64 `json:"volume"`
	} `json:"quote"`
	AdjClose []struct {
		AdjClose []*float64 `json:"adjclose"`
	} `json:"adjclose"`
}
