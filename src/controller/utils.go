package controller

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	logger "github.com/sirupsen/logrus"

	"earningsbot/src/model"
	"earningsbot/src/repository"
)

// Capture records a system exception, logs it locally, and optionally
// persists it in the database. A "ticker" entry in contextData is copied
// to the Ticker column.
func Capture(
	ctx context.Context,
	repo *repository.ExceptionRepository,
	service string,
	module string,
	method string,
	level string,
	err error,
	contextData map[string]interface{},
) {

	if err == nil {
		return
	}

	var ctxJSON string
	if contextData != nil {
		if b, e := json.Marshal(contextData); e == nil {
			ctxJSON = string(b)
		}
	}
	ticker, _ := contextData["ticker"].(string)

	exc := &model.Exception{
		Service:   service,
		Module:    module,
		Method:    method,
		Ticker:    ticker,
		Message:   err.Error(),
		Stack:     string(debug.Stack()),
		Level:     level,
		Context:   ctxJSON,
		CreatedAt: time.Now(),
	}

	// Local log
	entry := logger.WithFields(map[string]interface{}{
		"service": service,
		"module":  module,
		"method":  method,
		"ticker":  ticker,
		"level":   level,
	}).WithError(err)
	if level == "warn" {
		entry.Warn("System exception captured")
	} else {
		entry.Error("System exception captured")
	}

	// Persist in database
	if repo != nil {
		if e := repo.Create(ctx, exc); e != nil {
			logger.WithError(e).Error("Failed to persist exception")
		}
	}
}
