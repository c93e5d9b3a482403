package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// parseLimit reads ?limit=, defaulting to 50 and capping at 1000.
func parseLimit(r *http.Request) (int, bool) {
	param := r.URL.Query().Get("limit")
	if param == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(param)
	if err != nil || limit <= 0 {
		return 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}
