package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"earningsbot/src/externalmodel"
	"earningsbot/src/model"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const fmpProvider = "fmp"

// FMPClient reads earnings and company data from Financial Modeling Prep.
type FMPClient struct {
	apiKey string
	http   *resty.Client
}

func NewFMPClient(apiKey, baseURL string) *FMPClient {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/stable"
	}
	if apiKey == "" {
		logger.Warn("FMP_API_KEY is empty, earnings lookups will be rejected upstream")
	}
	return &FMPClient{
		apiKey: apiKey,
		http:   NewRestyClient(baseURL, defaultTimeout),
	}
}

// GetEarnings returns up to limit earnings reports for symbol, newest first.
func (c *FMPClient) GetEarnings(ctx context.Context, symbol string, limit int) ([]externalmodel.FMPEarning, error) {
	var out []externalmodel.FMPEarning
	err := c.get(ctx, "/earnings", map[string]string{
		"symbol": strings.ToUpper(symbol),
		"limit":  strconv.Itoa(limit),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetEarningsCalendar returns every report scheduled between from and to (YYYY-MM-DD, inclusive).
func (c *FMPClient) GetEarningsCalendar(ctx context.Context, from, to string) ([]externalmodel.FMPCalendarRecord, error) {
	var out []externalmodel.FMPCalendarRecord
	err := c.get(ctx, "/earnings-calendar", map[string]string{
		"from": from,
		"to":   to,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfile returns the company profile for symbol.
func (c *FMPClient) GetProfile(ctx context.Context, symbol string) (*externalmodel.FMPProfile, error) {
	var out []externalmodel.FMPProfile
	if err := c.get(ctx, "/profile", map[string]string{"symbol": strings.ToUpper(symbol)}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, model.DataUnavailable("no FMP profile for %s", symbol)
	}
	return &out[0], nil
}

func (c *FMPClient) get(ctx context.Context, endpoint string, params map[string]string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("apikey", c.apiKey).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("fmp %s: %w", endpoint, err)
	}
	if resp.IsError() {
		return newAPIError(fmpProvider, endpoint, resp)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		// FMP answers 200 with an object body when the key or plan is rejected.
		var apiErr externalmodel.FMPError
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.ErrorMessage != "" {
			return fmt.Errorf("fmp %s: %s", endpoint, apiErr.ErrorMessage)
		}
		return fmt.Errorf("fmp %s: decode: %w", endpoint, err)
	}
	return nil
}
