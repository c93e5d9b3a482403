package handler

import (
	"net/http"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
)

type positionLoader interface {
	Load() ([]model.Position, error)
}

// PositionsHandler lists the open positions from the position store.
func PositionsHandler(store positionLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := store.Load()
		if err != nil {
			logger.WithError(err).Error("failed to load positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if positions == nil {
			positions = []model.Position{}
		}
		writeJSON(w, http.StatusOK, positions)
	}
}
