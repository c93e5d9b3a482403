package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"earningsbot/src/auth"
	"earningsbot/src/handler"
	"earningsbot/src/notify"
	"earningsbot/src/repository"
)

const shutdownTimeout = 5 * time.Second

// Deps are the stores and runners behind the admin API.
type Deps struct {
	Positions *repository.PositionFileRepository
	Trades    *repository.TradeLogFile
	Cycles    handler.CycleRunner
	Hub       *notify.Hub
	TokenHash string
	// EnableDB mounts /orders, served from the database mirror.
	EnableDB bool
}

func NewRouter(d Deps) chi.Router {
	// Router with middleware
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	// Operator routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(d.TokenHash))
		r.Get("/positions", handler.PositionsHandler(d.Positions))
		r.Get("/trades", handler.TradesHandler(d.Trades))
		if d.EnableDB {
			r.Get("/orders", handler.DefaultSearchOrdersHandler())
		}
		if d.Hub != nil {
			r.Get("/ws/events", d.Hub.ServeWS)
		}
		r.Post("/cycles/{name}", handler.RunCycleHandler(d.Cycles))
	})

	return r
}

// StartServer serves h on port until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, port string, h http.Handler) error {
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server crashed")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}
