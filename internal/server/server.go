// Package server assembles services, handlers and routes into the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/engine"
	"fintrack/internal/fxrate"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// App is the wired application. The services used by background jobs are
// exposed so the caller can schedule them.
type App struct {
	Router    *gin.Engine
	Cashflow  services.CashflowServicer
	FX        services.FXServicer
	Snapshots services.PortfolioSnapshotServicer
}

// New builds every service on db and registers the routes under /api/v1.
// A nil provider disables provider refreshes; pushed rates still work.
func New(cfg *config.Config, db *gorm.DB, scoring engine.HealthConfig, provider fxrate.Provider) *App {
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	settingsService := services.NewSettingsService(db, cfg.DefaultUSDRate)
	accountService := services.NewAccountService(db)
	cashflowService := services.NewCashflowService(db, settingsService)
	budgetService := services.NewBudgetService(db, settingsService)
	goalService := services.NewGoalService(db)
	backupService := services.NewBackupService(db, settingsService)
	dashboardService := services.NewDashboardService(backupService, scoring, cfg.DefaultUSDRate)
	snapshotService := services.NewPortfolioSnapshotService(db, dashboardService)
	fxService := services.NewFXService(provider, fxrate.SourceName, settingsService)

	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	cashflowHandler := handlers.NewCashflowHandler(cashflowService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	goalHandler := handlers.NewGoalHandler(goalService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, fxService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	exportHandler := handlers.NewExportHandler(backupService, dashboardService, auditService)
	snapshotHandler := handlers.NewPortfolioSnapshotHandler(snapshotService)
	pipelineHandler := handlers.NewPipelineHandler(settingsService, fxService, cashflowService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Pipeline routes (API key)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/snapshots", snapshotHandler.ComputeSnapshots)
	pipeline.POST("/fx-rate", pipelineHandler.RecordRate)
	pipeline.POST("/fx-refresh", pipelineHandler.RefreshRate)
	pipeline.POST("/recurring", pipelineHandler.RunRecurring)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.POST("/:id/assets", accountHandler.AddAsset)
	accounts.PUT("/:id/assets/:assetId", accountHandler.UpdateAsset)
	accounts.DELETE("/:id/assets/:assetId", accountHandler.DeleteAsset)

	cashflow := protected.Group("/cashflow")
	cashflow.POST("", cashflowHandler.CreateRecord)
	cashflow.GET("", cashflowHandler.ListRecords)
	cashflow.GET("/summary", cashflowHandler.GetMonthlySummary)
	cashflow.POST("/recurring/run", cashflowHandler.RunRecurring)
	cashflow.GET("/:id", cashflowHandler.GetRecord)
	cashflow.PUT("/:id", cashflowHandler.UpdateRecord)
	cashflow.DELETE("/:id", cashflowHandler.DeleteRecord)

	budgets := protected.Group("/budgets")
	budgets.PUT("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetMonthBudgets)
	budgets.POST("/copy", budgetHandler.CopyPreviousMonth)
	budgets.GET("/report", budgetHandler.GetBudgetReport)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	protected.GET("/settings", settingsHandler.GetSettings)
	protected.PUT("/settings/rate", settingsHandler.SetManualRate)
	protected.PUT("/settings/categories", settingsHandler.SetCategories)
	protected.GET("/fx/rate", settingsHandler.GetRate)
	protected.POST("/fx/refresh", settingsHandler.RefreshRate)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetDashboard)
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/health", dashboardHandler.GetHealth)
	dashboard.GET("/pnl", dashboardHandler.GetPNL)
	dashboard.GET("/goals", dashboardHandler.GetGoalProgress)

	protected.GET("/snapshots", snapshotHandler.GetSnapshots)
	protected.GET("/snapshots/latest", snapshotHandler.GetLatestSnapshot)

	protected.GET("/export/backup", exportHandler.ExportBackup)
	protected.POST("/import/backup", exportHandler.ImportBackup)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)
	protected.GET("/reports/dashboard", exportHandler.DashboardReport)

	return &App{
		Router:    router,
		Cashflow:  cashflowService,
		FX:        fxService,
		Snapshots: snapshotService,
	}
}
