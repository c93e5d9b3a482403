package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
	"earningsbot/src/repository"
)

type orderLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.OrderExecutionLog, error)
}

// SearchOrdersHandler lists the database mirror of the trade log, newest first.
func SearchOrdersHandler(repo orderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := parseLimit(r)
		if !ok {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		orders, err := repo.ListRecent(r.Context(), limit)
		if err != nil {
			logger.WithError(err).Error("failed to search orders")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []model.OrderExecutionLog{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

// DefaultSearchOrdersHandler reads through the read-only connection.
func DefaultSearchOrdersHandler() http.HandlerFunc {
	return SearchOrdersHandler(repository.NewReadOnlyOrderExecutionLogRepository())
}
