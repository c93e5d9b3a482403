package connectors

// Test index:
//  1. TestIsRetryableResp verifies retry decisions for various response codes and errors.
//  2. TestFMPGetEarnings checks query wiring and decoding of nullable fields.
//  3. TestFMPGetEarningsRejectedKey surfaces the FMP error message returned with status 200.
//  4. TestFMPGetEarningsCalendar checks the calendar query window.
//  5. TestFMPGetProfile covers the happy path and an empty profile list.
//  6. TestFMPUnauthorized maps non-2xx answers to APIError.
//  7. TestChartGetChart validates path, query and decoding.
//  8. TestChartNotFound wraps ErrDataUnavailable for unknown symbols.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"earningsbot/src/model"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type assertError struct{}

func (assertError) Error() string { return "err" }

func fakeResponse(status int) *resty.Response {
	return &resty.Response{RawResponse: &http.Response{StatusCode: status}}
}

func TestIsRetryableResp(t *testing.T) {
	cases := []struct {
		name string
		resp *resty.Response
		err  error
		want bool
	}{
		{name: "error present", err: assertError{}, want: true},
		{name: "server error", resp: fakeResponse(500), want: true},
		{name: "too many requests", resp: fakeResponse(429), want: true},
		{name: "timeout", resp: fakeResponse(408), want: true},
		{name: "ok response", resp: fakeResponse(200), want: false},
		{name: "not found", resp: fakeResponse(404), want: false},
		{name: "nil resp", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := isRetryableResp(tc.resp, tc.err)
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFMPGetEarnings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/earnings", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		require.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol":"AAPL","date":"2025-01-30","epsActual":2.4,"epsEstimated":2.35,"revenueActual":124300000000,"revenueEstimated":124100000000},
			{"symbol":"AAPL","date":"2025-05-01","epsActual":null,"epsEstimated":1.62,"revenueActual":null,"revenueEstimated":94000000000,"guidanceEps":1.5}
		]`))
	}))
	defer srv.Close()

	client := NewFMPClient("test-key", srv.URL)
	records, err := client.GetEarnings(context.Background(), "aapl", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "2025-01-30", records[0].Date)
	require.NotNil(t, records[0].EPSActual)
	require.Equal(t, 2.4, *records[0].EPSActual)
	require.Nil(t, records[0].GuidanceEPS)
	require.Nil(t, records[1].EPSActual)
	require.NotNil(t, records[1].GuidanceEPS)
}

func TestFMPGetEarningsRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
	}))
	defer srv.Close()

	_, err := NewFMPClient("bad", srv.URL).GetEarnings(context.Background(), "AAPL", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid API KEY.")
}

func TestFMPGetEarningsCalendar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/earnings-calendar", r.URL.Path)
		require.Equal(t, "2025-03-04", r.URL.Query().Get("from"))
		require.Equal(t, "2025-03-04", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`[{"symbol":"CRWD","date":"2025-03-04","time":"amc","epsEstimated":1.14},{"symbol":"TGT","date":"2025-03-04","time":"bmo"}]`))
	}))
	defer srv.Close()

	records, err := NewFMPClient("k", srv.URL).GetEarningsCalendar(context.Background(), "2025-03-04", "2025-03-04")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "amc", records[0].Time)
	require.Nil(t, records[1].EPSEstimated)
}

func TestFMPGetProfile(t *testing.T) {
	empty := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/profile", r.URL.Path)
		if empty {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"symbol":"MSFT","sector":"Technology","exchange":"NASDAQ","isEtf":false}]`))
	}))
	defer srv.Close()

	client := NewFMPClient("k", srv.URL)
	profile, err := client.GetProfile(context.Background(), "msft")
	require.NoError(t, err)
	require.Equal(t, "Technology", profile.Sector)

	empty = true
	_, err = client.GetProfile(context.Background(), "msft")
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}

func TestFMPUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"no key"}`))
	}))
	defer srv.Close()

	_, err := NewFMPClient("", srv.URL).GetEarningsCalendar(context.Background(), "2025-03-04", "2025-03-04")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "invalid or missing api key")
}

func TestChartGetChart(t *testing.T) {
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		require.Equal(t, "1m", r.URL.Query().Get("interval"))
		require.Equal(t, "1740960000", r.URL.Query().Get("period1"))
		require.Equal(t, "1741046400", r.URL.Query().Get("period2"))
		require.Equal(t, "true", r.URL.Query().Get("includePrePost"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SPY","exchangeName":"PCX","instrumentType":"ETF"},
			"timestamp":[1740960000,1740960060],
			"indicators":{"quote":[{"open":[1,2],"high":[1,2],"low":[1,2],"close":[1,null],"volume":[10,20]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	res, err := NewChartClient(srv.URL).GetChart(context.Background(), "spy", ChartQuery{
		Interval:       Interval1m,
		Start:          start,
		End:            end,
		IncludePrePost: true,
	})
	require.NoError(t, err)
	require.Equal(t, "PCX", res.Meta.ExchangeName)
	require.Equal(t, "ETF", res.Meta.InstrumentType)
	require.Len(t, res.Timestamp, 2)
	require.Nil(t, res.Indicators.Quote[0].Close[1])
}

func TestChartNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := NewChartClient(srv.URL).GetChart(context.Background(), "ZZZZ", ChartQuery{})
	require.ErrorIs(t, err, model.ErrDataUnavailable)
}
