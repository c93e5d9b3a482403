package executor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"earningsbot/src/auth"
	"earningsbot/src/executors"
	"earningsbot/src/server"
)

// Executor is the long-running daemon: scheduler loop plus admin API.
type Executor struct{}

func (t *Executor) Start() error {
	config := GetConfig()
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	app, err := Build(Options{WithHub: config.ServeHTTP})
	if err != nil {
		logrus.WithError(err).Error("Failed to wire earningsbot")
		return err
	}
	defer app.Close()

	loopCfg := executors.GetConfig()
	schedule, err := executors.DailySchedule(loopCfg, executors.FromOrchestrator(app.Orchestrator))
	if err != nil {
		logrus.WithError(err).Error("Invalid job schedule")
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return executors.StartLoop(gctx, schedule, loopCfg.LoopPeriod)
	})

	if config.ServeHTTP {
		go app.Hub.Run(gctx)
		router := server.NewRouter(server.Deps{
			Positions: app.Positions,
			Trades:    app.Trades,
			Cycles:    app.Orchestrator,
			Hub:       app.Hub,
			TokenHash: auth.GetConfig().AdminTokenHash,
			EnableDB:  app.EnableDB,
		})
		g.Go(func() error {
			return server.StartServer(gctx, server.GetConfig().Port, router)
		})
	}

	logrus.WithField("app", config.AppName).Info("Starting earningsbot daemon")

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("earningsbot stopped with error")
		return err
	}
	return nil
}
