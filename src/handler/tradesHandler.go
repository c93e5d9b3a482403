package handler

import (
	"net/http"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

type tradeTailer interface {
	Tail(n int) ([]model.OrderResult, error)
}

// TradesHandler returns the last ?limit= trade log records, oldest first.
func TradesHandler(trades tradeTailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := parseLimit(r)
		if !ok {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		records, err := trades.Tail(limit)
		if err != nil {
			logger.WithError(err).Error("failed to read trade log")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.OrderResult{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}
