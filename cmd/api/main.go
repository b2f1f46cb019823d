package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/fxrate"
	"fintrack/internal/logger"
	"fintrack/internal/scheduler"
	"fintrack/internal/server"
	"fintrack/internal/validator"
)

// @title           Fintrack API
// @version         1.0
// @description     Fintrack aggregates asset accounts, cashflow, budgets and goals into net worth, P&L and financial health reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	scoring, err := config.LoadScoring(appConfig.ScoringConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load scoring configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	provider := fxrate.NewYahooClient(&http.Client{Timeout: 10 * time.Second}, appConfig.FXProviderURL, fxrate.DefaultTTL)
	app := server.New(appConfig, dbManager.DB(), scoring, provider)

	jobs := scheduler.New()
	if err := jobs.AddJob(appConfig.RecurringSpec, &scheduler.RecurringJob{Cashflow: app.Cashflow}); err != nil {
		return fmt.Errorf("invalid RECURRING_SPEC: %w", err)
	}
	if err := jobs.AddJob(appConfig.FXRefreshSpec, &scheduler.FXRefreshJob{FX: app.FX}); err != nil {
		return fmt.Errorf("invalid FX_REFRESH_SPEC: %w", err)
	}
	if err := jobs.AddJob(appConfig.SnapshotSpec, &scheduler.SnapshotJob{Snapshots: app.Snapshots}); err != nil {
		return fmt.Errorf("invalid SNAPSHOT_SPEC: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	log.Infof("Starting Fintrack server on port %s", appConfig.Port)
	return app.Router.Run(":" + appConfig.Port)
}
