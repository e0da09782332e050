package services

import (
	"time"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// CategoryAllocation is one planned spending bucket in a budget replacement.
type CategoryAllocation struct {
	Name          string
	PlannedAmount int64
	IsRecurring   bool
	Notes         string
}

// BudgetServicer defines the contract for budget period management.
type BudgetServicer interface {
	// ResolvePeriod returns the user's budget period containing date,
	// auto-provisioning an empty active period when none exists.
	ResolvePeriod(userID uint, date time.Time) (*models.BudgetPeriod, error)
	// ReplaceCategoryAllocations replaces the category list of the period
	// containing date, carrying forward spent amounts for surviving names.
	ReplaceCategoryAllocations(userID uint, date time.Time, categories []CategoryAllocation) (*models.BudgetPeriod, error)
	GetUserPeriods(userID uint, page pagination.PageRequest, status *models.PeriodStatus) (*pagination.PageResponse[models.BudgetPeriod], error)
	GetPeriodByID(userID, periodID uint) (*models.BudgetPeriod, error)
	UpdatePeriodStatus(userID, periodID uint, status models.PeriodStatus) (*models.BudgetPeriod, error)
	DeletePeriod(userID, periodID uint) error
}

// ExpenseInput carries the fields of an expense posting. Amount is the
// unsigned magnitude in cents; the stored transaction amount is negated.
type ExpenseInput struct {
	Date          time.Time
	Amount        int64
	Category      string
	PaymentMethod string
	Description   string
}

// LedgerServicer coordinates expense transactions with budget category
// spent totals and ceiling enforcement.
type LedgerServicer interface {
	PostExpense(userID uint, in ExpenseInput) (*models.Transaction, error)
	UpdateExpense(userID, transactionID uint, in ExpenseInput) (*models.Transaction, error)
	DeleteExpense(userID, transactionID uint) error
}

// IncomeInput carries the fields of an income posting. Amount is the
// unsigned magnitude in cents.
type IncomeInput struct {
	Date          time.Time
	Amount        int64
	Category      string
	PaymentMethod string
	Description   string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
	Category *string
}

// TransactionServicer defines the contract for transaction management.
// Expense mutations are routed through the ledger so budget totals stay
// consistent.
type TransactionServicer interface {
	AddIncome(userID uint, in IncomeInput) (*models.Transaction, error)
	UpdateIncome(userID, transactionID uint, in IncomeInput) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	TotalIncome(userID uint, from, to time.Time) (int64, error)
}

// SavingsGoalInput carries the fields of a savings goal create/update.
type SavingsGoalInput struct {
	Name         string
	TargetAmount int64
	TargetDate   time.Time
	Category     string
	Priority     models.GoalPriority
	Notes        string
}

// SavingsGoalServicer defines the contract for savings goal management.
type SavingsGoalServicer interface {
	CreateGoal(userID uint, in SavingsGoalInput) (*models.SavingsGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID uint, in SavingsGoalInput, currentAmount *int64) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
