package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"finagent/internal/ai"
	"finagent/internal/config"
	"finagent/internal/database"
	"finagent/internal/handlers"
	"finagent/internal/logger"
	"finagent/internal/middleware"
	"finagent/internal/services"
	"finagent/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Gemini backs both collaborator capabilities: extraction and phrasing.
	if appConfig.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set; extraction and feedback will degrade to fallback messages")
	}
	aiClient, err := ai.NewClient(context.Background(), appConfig.GeminiAPIKey, appConfig.GeminiModel)
	if err != nil {
		return fmt.Errorf("failed to create AI client: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	settingsService := services.NewSettingsService(db)
	ledgerService := services.NewLedgerService(db, settingsService)
	pendingService := services.NewPendingService(db, ledgerService)
	feedbackService := services.NewFeedbackService(ledgerService, aiClient, appConfig.AITimeout)
	conversationService := services.NewConversationService(db)
	intakeService := services.NewIntakeService(
		aiClient,
		ledgerService,
		pendingService,
		feedbackService,
		conversationService,
		settingsService,
		appConfig.AITimeout,
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(intakeService, conversationService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	overviewHandler := handlers.NewOverviewHandler(ledgerService, settingsService)

	// Register custom binding validators
	validator.Register()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Chat routes
	chat := v1.Group("/chat")
	chat.POST("/messages", chatHandler.PostMessage)
	chat.GET("/messages", chatHandler.GetMessages)
	chat.POST("/pending/:id/resolve", chatHandler.ResolveObligation)

	// Settings (onboarding)
	v1.GET("/settings", settingsHandler.GetSettings)
	v1.PUT("/settings", settingsHandler.PutSettings)

	// Transaction history
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.PUT("/:id", transactionHandler.ReplaceTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Computed views
	v1.GET("/overview", overviewHandler.GetOverview)
	v1.GET("/analytics", overviewHandler.GetAnalytics)

	log.Infof("Starting finagent server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
