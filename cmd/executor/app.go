package executor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"earningsbot/src/connectors"
	"earningsbot/src/controller"
	"earningsbot/src/database"
	"earningsbot/src/decision"
	"earningsbot/src/marketdata"
	"earningsbot/src/notify"
	"earningsbot/src/reporting"
	"earningsbot/src/repository"
	"earningsbot/src/strategy"
)

// App is the wired bot shared by the daemon and the one-shot commands.
type App struct {
	Logger       *logrus.Entry
	Positions    *repository.PositionFileRepository
	Trades       *repository.TradeLogFile
	Orchestrator *controller.Orchestrator
	Hub          *notify.Hub
	EnableDB     bool

	publisher *notify.OrderPublisher
}

// Options select the optional parts of the wiring.
type Options struct {
	// WithHub adds the websocket feed to the notifier fan-out.
	WithHub bool
}

// Build reads every package config from the environment and wires the bot.
func Build(opts Options) (*App, error) {
	dbCfg := database.GetConfig()
	SetupLogger(dbCfg.LogLevel, dbCfg.LogFormat)
	log := logrus.WithField("app", GetConfig().AppName)

	strategyCfg := strategy.GetConfig()
	if err := strategyCfg.Validate(); err != nil {
		return nil, err
	}
	decisionCfg := decision.GetConfig()
	if err := decisionCfg.Validate(); err != nil {
		return nil, err
	}

	if dbCfg.EnableDB {
		// Initialize main (read/write) database
		if err := database.InitMainDB(); err != nil {
			return nil, fmt.Errorf("connect main database: %w", err)
		}
		// Initialize read-only database
		if err := database.InitReadOnlyDB(); err != nil {
			return nil, fmt.Errorf("connect read-only database: %w", err)
		}
	}

	repoCfg := repository.GetConfig()
	app := &App{
		Logger:    log,
		Positions: repository.NewPositionFileRepository(repoCfg.PositionsFile),
		Trades:    repository.NewTradeLogFile(repoCfg.TradesLogFile),
		EnableDB:  dbCfg.EnableDB,
	}

	notifyCfg := notify.GetConfig()
	publisher, err := notify.NewOrderPublisher(log, notifyCfg.KafkaBrokers, notifyCfg.KafkaOrdersTopic)
	if err != nil {
		return nil, err
	}
	app.publisher = publisher

	var mirrors []repository.OrderMirror
	if publisher != nil {
		mirrors = append(mirrors, publisher)
	}
	if dbCfg.EnableDB {
		mirrors = append(mirrors, repository.NewOrderExecutionLogRepository())
	}
	journal := repository.NewTradeJournal(app.Trades, mirrors...)

	notifiers := []notify.Notifier{notify.FromConfig(log, notifyCfg)}
	if opts.WithHub {
		app.Hub = notify.NewHub(log)
		notifiers = append(notifiers, app.Hub)
	}
	notifier := notify.NewMulti(notifiers...)

	exec := strategy.NewExecutor(log.WithField("component", "executor"), strategyCfg, app.Positions, journal, notifier)
	market := marketdata.NewGatewayFromConfig(log.WithField("component", "marketdata"), connectors.GetConfig())

	app.Orchestrator = controller.NewOrchestrator(log.WithField("component", "orchestrator"), controller.GetConfig(), controller.Deps{
		Engine:     decision.NewEngine(decisionCfg),
		Market:     market,
		Store:      app.Positions,
		Executor:   exec,
		Notifier:   notifier,
		Reporter:   reporting.FromConfig(log.WithField("component", "notion"), reporting.GetConfig()),
		Exceptions: repository.NewExceptionRepository(),
	})

	log.WithFields(logrus.Fields{
		"mode":      strategyCfg.Mode,
		"positions": repoCfg.PositionsFile,
		"trades":    repoCfg.TradesLogFile,
		"db":        dbCfg.EnableDB,
		"kafka":     publisher != nil,
	}).Info("earningsbot wired")
	return app, nil
}

// Close releases the Kafka producer.
func (a *App) Close() {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Close(); err != nil {
		a.Logger.WithError(err).Warn("failed to close order publisher")
	}
}
