package main

import (
	"fmt"
	"net/http"
	"os"

	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/handlers"
	"pennywise/internal/locks"
	"pennywise/internal/logger"
	"pennywise/internal/middleware"
	"pennywise/internal/services"
	"pennywise/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "pennywise/internal/docs" // Import swagger docs
)

// @title           Pennywise API
// @version         1.0
// @description     Pennywise is a personal finance API for tracking income and expenses against monthly category budgets with enforced spending ceilings.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Register custom validators
	validator.Register()

	// Initialize services. Budget and ledger share a keyed mutex so all
	// spending checks and total updates for one (user, month) serialize.
	db := dbManager.DB()
	periodLocks := locks.NewKeyedMutex()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db, periodLocks)
	ledgerService := services.NewLedgerService(db, periodLocks)
	transactionService := services.NewTransactionService(db, ledgerService)
	goalService := services.NewSavingsGoalService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, ledgerService, auditService)
	goalHandler := handlers.NewSavingsGoalHandler(goalService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/period", budgetHandler.GetBudgetPeriod)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("/expense", transactionHandler.AddExpense)
	transactions.POST("/income", transactionHandler.AddIncome)
	transactions.GET("/income/total", transactionHandler.GetIncomeTotal)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Savings goal routes
	goals := protected.Group("/savings-goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	log.Infof("Starting Pennywise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
