package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"earningsbot/cmd/executor"
	"earningsbot/src/auth"
	"earningsbot/src/database"
	"earningsbot/src/model"
	"earningsbot/src/reporting"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "earningsbot"
	app.Usage = "Earnings reaction swing trading bot"
	app.Version = Version

	app.Commands = []cli.Command{
		runCMD,
		scanCMD,
		updateCMD,
		calendarCMD,
		resetCalendarCMD,
		setupNotionCMD,
		positionsCMD,
		tradesCMD,
		hashTokenCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	runCMD = cli.Command{
		Name:        "run",
		Usage:       "run the scheduler and admin API",
		Action:      runAction,
		Description: `Runs the daily scan, update and calendar jobs until interrupted`,
	}
	scanCMD = cli.Command{
		Name:   "scan",
		Usage:  "run one earnings scan now",
		Action: withApp(scanAction),
		Flags: []cli.Flag{
			cli.StringFlag{Name: "timing", Value: model.TimingAMC, Usage: "amc (after close) or bmo (before open)"},
		},
	}
	updateCMD = cli.Command{
		Name:   "update",
		Usage:  "run the daily position update now",
		Action: withApp(updateAction),
	}
	calendarCMD = cli.Command{
		Name:   "calendar",
		Usage:  "publish the next trading day's earnings calendar",
		Action: withApp(calendarAction),
	}
	resetCalendarCMD = cli.Command{
		Name:   "reset-calendar",
		Usage:  "archive every row of the Notion calendar",
		Action: withApp(resetCalendarAction),
	}
	setupNotionCMD = cli.Command{
		Name:   "setup-notion",
		Usage:  "create the Notion databases and save their ids",
		Action: setupNotionAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "parent-page", Usage: "Notion page id that will hold the databases"},
		},
	}
	positionsCMD = cli.Command{
		Name:   "positions",
		Usage:  "print open positions",
		Action: positionsAction,
	}
	tradesCMD = cli.Command{
		Name:   "trades",
		Usage:  "print the last trade log records",
		Action: tradesAction,
		Flags: []cli.Flag{
			cli.IntFlag{Name: "limit", Value: 20},
		},
	}
	hashTokenCMD = cli.Command{
		Name:      "hash-token",
		Usage:     "print the bcrypt hash for ADMIN_TOKEN_HASH",
		ArgsUsage: "<token>",
		Action:    hashTokenAction,
	}
)

func runAction(_ *cli.Context) error {
	logrus.WithField("cmd", "run").Info("Starting earningsbot")
	return (&executor.Executor{}).Start()
}

// withApp wires the bot and runs fn under a signal-aware context.
func withApp(fn func(ctx context.Context, c *cli.Context, app *executor.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := executor.Build(executor.Options{})
		if err != nil {
			return err
		}
		defer app.Close()

		if err := fn(ctx, c, app); err != nil {
			app.Logger.WithField("cmd", c.Command.Name).WithError(err).Error("command failed")
			return err
		}
		return nil
	}
}

func scanAction(ctx context.Context, c *cli.Context, app *executor.App) error {
	report, err := app.Orchestrator.RunScan(ctx, c.String("timing"))
	if err != nil {
		return err
	}
	return printJSON(report)
}

func updateAction(ctx context.Context, _ *cli.Context, app *executor.App) error {
	report, err := app.Orchestrator.RunUpdate(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func calendarAction(ctx context.Context, _ *cli.Context, app *executor.App) error {
	report, err := app.Orchestrator.RunCalendar(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func resetCalendarAction(ctx context.Context, _ *cli.Context, app *executor.App) error {
	n, err := app.Orchestrator.ResetCalendar(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("archived %d calendar rows\n", n)
	return nil
}

func setupNotionAction(c *cli.Context) error {
	parent := c.String("parent-page")
	if parent == "" {
		return fmt.Errorf("--parent-page is required")
	}
	dbCfg := database.GetConfig()
	executor.SetupLogger(dbCfg.LogLevel, dbCfg.LogFormat)

	cfg := reporting.GetConfig()
	if cfg.NotionToken == "" {
		return fmt.Errorf("NOTION_TOKEN is not set")
	}
	log := logrus.WithField("cmd", "setup-notion")
	notion := reporting.NewNotionReporter(log, cfg, reporting.Databases{})
	dbs, err := notion.SetupDatabases(context.Background(), parent)
	if err != nil {
		return err
	}
	if err := reporting.SaveDatabases(cfg.NotionConfigFile, dbs); err != nil {
		return err
	}
	log.WithField("path", cfg.NotionConfigFile).Info("Notion databases created")
	return printJSON(dbs)
}

func positionsAction(_ *cli.Context) error {
	app, err := executor.Build(executor.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	positions, err := app.Positions.Load()
	if err != nil {
		return err
	}
	return printJSON(positions)
}

func tradesAction(c *cli.Context) error {
	app, err := executor.Build(executor.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	records, err := app.Trades.Tail(c.Int("limit"))
	if err != nil {
		return err
	}
	return printJSON(records)
}

func hashTokenAction(c *cli.Context) error {
	hash, err := auth.HashToken(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
