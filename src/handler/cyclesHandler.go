package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"earningsbot/src/auth"
	"earningsbot/src/controller"
	"earningsbot/src/model"
	"earningsbot/src/strategy"
)

// CycleRunner is the orchestrator as seen by the admin API.
type CycleRunner interface {
	RunScan(ctx context.Context, timing string) (controller.ScanReport, error)
	RunUpdate(ctx context.Context) (controller.UpdateReport, error)
	RunCalendar(ctx context.Context) (controller.CalendarReport, error)
}

type cycleError struct {
	Error string `json:"error"`
}

// RunCycleHandler fires one cycle by name (scan-amc, scan-bmo, update,
// calendar) and returns its report. Mount it behind auth.RequireToken.
func RunCycleHandler(runner CycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsOperator(r.Context()) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		name := chi.URLParam(r, "name")
		var (
			report interface{}
			err    error
		)
		switch name {
		case "scan-amc":
			report, err = runner.RunScan(r.Context(), model.TimingAMC)
		case "scan-bmo":
			report, err = runner.RunScan(r.Context(), model.TimingBMO)
		case "update":
			report, err = runner.RunUpdate(r.Context())
		case "calendar":
			report, err = runner.RunCalendar(r.Context())
		default:
			http.Error(w, "unknown cycle", http.StatusNotFound)
			return
		}

		log := logger.WithField("cycle", name)
		switch {
		case errors.Is(err, strategy.ErrLiveTradingNotImplemented):
			log.WithError(err).Error("cycle refused")
			writeJSON(w, http.StatusConflict, cycleError{Error: err.Error()})
		case err != nil:
			log.WithError(err).Error("cycle failed")
			writeJSON(w, http.StatusBadGateway, cycleError{Error: err.Error()})
		default:
			log.Info("cycle triggered over http")
			writeJSON(w, http.StatusOK, report)
		}
	}
}
