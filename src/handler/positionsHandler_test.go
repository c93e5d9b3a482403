package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earningsbot/src/model"
)

type fakePositions struct {
	positions []model.Position
	err       error
}

func (f fakePositions) Load() ([]model.Position, error) { return f.positions, f.err }

type fakeTrades struct {
	records []model.OrderResult
	err     error
	n       int
}

func (f *fakeTrades) Tail(n int) ([]model.OrderResult, error) {
	f.n = n
	return f.records, f.err
}

func TestPositionsHandler(t *testing.T) {
	h := PositionsHandler(fakePositions{positions: []model.Position{
		{Ticker: "NVDA", EntryPrice: 120, CurrentStop: 114, EntryDate: "2026-10-14", Quantity: 8},
	}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/positions", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []model.Position
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "NVDA", got[0].Ticker)
}

func TestPositionsHandlerEmptyAndError(t *testing.T) {
	rr := httptest.NewRecorder()
	PositionsHandler(fakePositions{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/positions", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, "[]", rr.Body.String())

	rr = httptest.NewRecorder()
	PositionsHandler(fakePositions{err: assert.AnError}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/positions", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTradesHandler(t *testing.T) {
	trades := &fakeTrades{records: []model.OrderResult{{OrderID: "a", Ticker: "NVDA", Action: model.SideBuy, Success: true}}}
	h := TradesHandler(trades)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/trades?limit=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 10, trades.n)

	var got []model.OrderResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, "a", got[0].OrderID)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/trades?limit=x", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	TradesHandler(&fakeTrades{err: assert.AnError}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/trades", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
