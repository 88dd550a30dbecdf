package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gammafit/adapters/postgres"
	"gammafit/internal/api"
	"gammafit/internal/config"
	"gammafit/internal/logging"
	"gammafit/internal/sensitivity"
	"gammafit/ports"
)

func main() {
	// Best effort: a missing .env file is fine in containerized deploys.
	_ = godotenv.Load()

	logger := logging.NewDefault()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		return
	}
	gin.SetMode(cfg.Server.GinMode)

	var sensitivityRepo ports.SensitivityRepository
	if cfg.Database.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			cancel()
			logger.Error("database connection: %v", err)
			return
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			logger.Error("database schema: %v", err)
			return
		}
		cancel()
		defer db.Close()
		sensitivityRepo = postgres.NewSensitivityRepository(db)
		logger.Info("persistence enabled")
	} else {
		logger.Info("no DATABASE_URL set, running without persistence")
	}

	estimator := &sensitivity.Estimator{
		NSigma:          cfg.Estimator.NSigma,
		GammaMin:        cfg.Estimator.GammaMin,
		BkgSystFraction: cfg.Estimator.BkgSystFraction,
	}
	batch := sensitivity.NewBatchEstimator(estimator, int64(cfg.Estimator.BatchWorkers))

	handler := api.NewHandler(logger, estimator, batch, sensitivityRepo)
	router := api.NewRouter(handler)

	logger.Info("listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server: %v", err)
	}
}
