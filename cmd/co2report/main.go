package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/chart"
	"github.com/nyc-taxi-co2/analysis/internal/config"
	"github.com/nyc-taxi-co2/analysis/internal/db"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
	"github.com/nyc-taxi-co2/analysis/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one report and returns the process exit code
func run(ctx context.Context, args []string, stdout io.Writer) int {
	cfg := config.Load()

	// Command line flags override the environment
	flags := flag.NewFlagSet("co2report", flag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.StringVar(&cfg.Driver, "driver", cfg.Driver, "Database driver: duckdb, sqlite or postgres")
	flags.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "Path to the emissions database (URL for postgres)")
	flags.StringVar(&cfg.YellowTable, "yellow", cfg.YellowTable, "Yellow fleet table")
	flags.StringVar(&cfg.GreenTable, "green", cfg.GreenTable, "Green fleet table")
	flags.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Append-only diagnostic log file")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: ERROR, WARN, INFO or DEBUG")
	flags.StringVar(&cfg.ChartPath, "chart", cfg.ChartPath, "Output path of the monthly totals PNG")
	flags.IntVar(&cfg.ChartDPI, "dpi", cfg.ChartDPI, "Chart resolution in dots per inch")
	flags.StringVar(&cfg.JSONPath, "json", cfg.JSONPath, "Optional JSON report output path")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger, err := logging.OpenFile(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(stdout, "Analysis failed: %v\n", err)
		return 1
	}
	defer logger.Close()

	if err := analyze(ctx, cfg, logger, stdout); err != nil {
		if apperr.Is(err, apperr.CodePrecondition) {
			fmt.Fprintln(stdout, err)
		} else {
			fmt.Fprintf(stdout, "Analysis failed: %v\n", err)
		}
		logger.Error("Analysis failed: %v", err)
		return 1
	}
	return 0
}

// analyze holds the database connection for exactly one report
func analyze(ctx context.Context, cfg *config.Config, logger *logging.Logger, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.IsFileBacked() {
		if _, err := os.Stat(cfg.DatabasePath); errors.Is(err, fs.ErrNotExist) {
			return apperr.Precondition("Database file not found at %s", cfg.DatabasePath)
		}
	}

	database, err := db.Connect(ctx, cfg.Driver, cfg.DatabasePath, logger)
	if err != nil {
		return apperr.Wrap(err, "connect")
	}
	defer database.Close()

	sink := chart.NewPNGSink(cfg.ChartPath, cfg.ChartDPI)
	driver := report.NewDriver(database, sink, stdout, logger, cfg.YellowTable, cfg.GreenTable)

	r, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.JSONPath != "" {
		if err := report.WriteJSON(r, cfg.JSONPath); err != nil {
			return apperr.Wrapf(err, "write %s", cfg.JSONPath)
		}
		fmt.Fprintf(stdout, "\nJSON report saved to %s\n", cfg.JSONPath)
	}

	logger.Info("Analysis run %s complete (%d failed questions)", r.RunID, len(r.Failures))
	return nil
}
