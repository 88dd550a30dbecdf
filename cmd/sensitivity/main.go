// Command sensitivity runs batch sensitivity estimation over datasets
// described in a JSON file and exports the results.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gammafit/adapters/excel"
	"gammafit/adapters/postgres"
	"gammafit/internal/config"
	"gammafit/internal/logging"
	"gammafit/internal/report"
	"gammafit/internal/sensitivity"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewDefault()

	var (
		input   = flag.String("input", "", "JSON file with an array of datasets")
		xlsxOut = flag.String("xlsx", "", "write tables to this .xlsx file")
		persist = flag.Bool("persist", false, "store tables in the configured database")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: sensitivity -input datasets.json [-xlsx out.xlsx] [-persist]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		logger.Error("read input: %v", err)
		os.Exit(1)
	}
	var datasets []sensitivity.Dataset
	if err := json.Unmarshal(raw, &datasets); err != nil {
		logger.Error("parse input: %v", err)
		os.Exit(1)
	}

	estimator := &sensitivity.Estimator{
		NSigma:          cfg.Estimator.NSigma,
		GammaMin:        cfg.Estimator.GammaMin,
		BkgSystFraction: cfg.Estimator.BkgSystFraction,
	}
	batch := sensitivity.NewBatchEstimator(estimator, int64(cfg.Estimator.BatchWorkers))

	ctx := context.Background()
	tables, err := batch.Run(ctx, datasets)
	if err != nil {
		logger.Error("estimation: %v", err)
		os.Exit(1)
	}

	for _, table := range tables {
		fmt.Println(report.SensitivityMarkdown(table))
	}

	if *xlsxOut != "" {
		if err := excel.NewSensitivityWriter().Write(*xlsxOut, tables); err != nil {
			logger.Error("xlsx export: %v", err)
			os.Exit(1)
		}
		logger.Info("wrote %s", *xlsxOut)
	}

	if *persist {
		if !cfg.Database.Enabled() {
			logger.Error("persist requested but DATABASE_URL is not set")
			os.Exit(1)
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := postgres.Connect(connectCtx, cfg.Database.URL)
		if err != nil {
			cancel()
			logger.Error("database connection: %v", err)
			os.Exit(1)
		}
		if err := postgres.EnsureSchema(connectCtx, db); err != nil {
			cancel()
			logger.Error("database schema: %v", err)
			os.Exit(1)
		}
		cancel()
		defer db.Close()

		repo := postgres.NewSensitivityRepository(db)
		for _, table := range tables {
			if err := repo.SaveTable(ctx, table); err != nil {
				logger.Error("persist %s: %v", table.EstimateID, err)
				os.Exit(1)
			}
		}
		logger.Info("persisted %d tables", len(tables))
	}
}
