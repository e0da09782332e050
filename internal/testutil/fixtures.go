package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPeriod creates an active budget period covering the month of date.
func CreateTestPeriod(t *testing.T, db *gorm.DB, userID uint, date time.Time) *models.BudgetPeriod {
	t.Helper()

	start, end := models.MonthBounds(date)
	period := &models.BudgetPeriod{
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
		Status:    models.PeriodStatusActive,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test budget period: %v", err)
	}
	return period
}

// CreateTestCategory adds a category with the given planned amount (in cents)
// to a period.
func CreateTestCategory(t *testing.T, db *gorm.DB, periodID uint, name string, plannedAmount int64) *models.BudgetCategory {
	t.Helper()

	category := &models.BudgetCategory{
		BudgetPeriodID: periodID,
		Name:           name,
		PlannedAmount:  plannedAmount,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test budget category: %v", err)
	}
	return category
}

// CreateTestPeriodWithCategory creates a period for the month of date with a
// single budgeted category.
func CreateTestPeriodWithCategory(t *testing.T, db *gorm.DB, userID uint, date time.Time, name string, plannedAmount int64) (*models.BudgetPeriod, *models.BudgetCategory) {
	t.Helper()

	period := CreateTestPeriod(t, db, userID, date)
	category := CreateTestCategory(t, db, period.ID, name, plannedAmount)

	if err := db.Model(period).Update("total_budget", plannedAmount).Error; err != nil {
		t.Fatalf("failed to set test period total budget: %v", err)
	}
	return period, category
}

// CreateTestExpense inserts an expense transaction (amount is the unsigned
// magnitude in cents, stored negative) without touching budget totals.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, date time.Time, category string, amount int64) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:   userID,
		Date:     date,
		Amount:   -amount,
		Type:     models.TransactionTypeExpense,
		Category: category,
		Status:   models.TransactionStatusCompleted,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return txn
}

// CreateTestIncome inserts an income transaction.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID uint, date time.Time, category string, amount int64) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:   userID,
		Date:     date,
		Amount:   amount,
		Type:     models.TransactionTypeIncome,
		Category: category,
		Status:   models.TransactionStatusCompleted,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return txn
}

// CreateTestGoal creates a savings goal.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: 100000, // $1000.00
		Category:     "Emergency",
		Priority:     models.GoalPriorityMedium,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test savings goal: %v", err)
	}
	return goal
}
