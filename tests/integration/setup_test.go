package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pennywise/internal/handlers"
	"pennywise/internal/locks"
	"pennywise/internal/logger"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/services"
	"pennywise/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.BudgetPeriod{},
		&models.BudgetCategory{},
		&models.Transaction{},
		&models.SavingsGoal{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	periodLocks := locks.NewKeyedMutex()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db, periodLocks)
	ledgerService := services.NewLedgerService(db, periodLocks)
	transactionService := services.NewTransactionService(db, ledgerService)
	goalService := services.NewSavingsGoalService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, ledgerService, auditService)
	goalHandler := handlers.NewSavingsGoalHandler(goalService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/period", budgetHandler.GetBudgetPeriod)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	transactions := protected.Group("/transactions")
	transactions.POST("/expense", transactionHandler.AddExpense)
	transactions.POST("/income", transactionHandler.AddIncome)
	transactions.GET("/income/total", transactionHandler.GetIncomeTotal)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	goals := protected.Group("/savings-goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts the error code from an error envelope response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// setBudget replaces the budget for the month of date with a single category.
func (app *testApp) setBudget(t *testing.T, token, date, category string, plannedAmount int64) {
	t.Helper()
	body := fmt.Sprintf(`{"period":{"start":%q},"categories":[{"name":%q,"planned_amount":%d}]}`, date, category, plannedAmount)
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("set budget failed: %d %s", rec.Code, rec.Body.String())
	}
}
