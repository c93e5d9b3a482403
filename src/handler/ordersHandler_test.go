package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earningsbot/src/model"
)

type mockOrderLister struct {
	orders      []model.OrderExecutionLog
	err         error
	limit       int
	calledCount int
}

func (m *mockOrderLister) ListRecent(_ context.Context, limit int) ([]model.OrderExecutionLog, error) {
	m.calledCount++
	m.limit = limit
	return m.orders, m.err
}

func TestSearchOrdersHandler_InvalidLimit(t *testing.T) {
	repo := &mockOrderLister{}
	handler := SearchOrdersHandler(repo)

	for _, q := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/orders?limit="+q, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
	require.Zero(t, repo.calledCount)
}

func TestSearchOrdersHandler_RepoError(t *testing.T) {
	handler := SearchOrdersHandler(&mockOrderLister{err: assert.AnError})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSearchOrdersHandler_Success(t *testing.T) {
	repo := &mockOrderLister{orders: []model.OrderExecutionLog{
		{ID: 2, OrderID: "b", Ticker: "NVDA", Side: "sell", Quantity: 3, Status: model.OrderExecutionStatusFilled},
		{ID: 1, OrderID: "a", Ticker: "NVDA", Side: "buy", Quantity: 3, Status: model.OrderExecutionStatusFilled},
	}}
	handler := SearchOrdersHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders?limit=5000", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, maxLimit, repo.limit)

	var got []model.OrderExecutionLog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].OrderID)
}

func TestSearchOrdersHandler_DefaultLimitAndEmpty(t *testing.T) {
	repo := &mockOrderLister{}
	handler := SearchOrdersHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, defaultLimit, repo.limit)
	require.JSONEq(t, "[]", rr.Body.String())
}
