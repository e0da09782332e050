package models

import (
	"slices"
	"time"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionStatus represents the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// ExpenseCategories is the fixed set of categories valid for expense
// transactions and budget allocations. Part of the wire contract.
var ExpenseCategories = []string{
	"Groceries",
	"Transportation",
	"Utilities",
	"Entertainment",
	"Rent",
	"Shopping",
	"Restaurant",
	"Healthcare",
	"Other",
}

// IncomeCategories is the fixed set of categories valid for income
// transactions.
var IncomeCategories = []string{
	"Salary",
	"Freelance",
	"Investments",
	"Business",
	"Rental",
	"Other Income",
}

// PaymentMethods is the fixed set of accepted payment methods.
var PaymentMethods = []string{
	"Credit Card",
	"Debit Card",
	"Cash",
	"Bank Transfer",
	"Mobile Payment",
	"Check",
	"Digital Payment",
}

// ValidExpenseCategory reports whether name is a member of the expense set.
func ValidExpenseCategory(name string) bool {
	return slices.Contains(ExpenseCategories, name)
}

// ValidIncomeCategory reports whether name is a member of the income set.
func ValidIncomeCategory(name string) bool {
	return slices.Contains(IncomeCategories, name)
}

// ValidPaymentMethod reports whether method is an accepted payment method.
func ValidPaymentMethod(method string) bool {
	return slices.Contains(PaymentMethods, method)
}

// Transaction represents a financial transaction. Amount is signed: income
// is stored positive, expenses negative; the magnitude is what the ledger
// books against the budget category. An expense references its
// BudgetCategory by (date -> period, category name), not a stored key.
type Transaction struct {
	Base
	UserID        uint              `gorm:"not null;index:idx_user_date" json:"user_id"`
	Date          time.Time         `gorm:"not null;index:idx_user_date" json:"date"`
	Amount        int64             `gorm:"type:bigint;not null" json:"amount"`
	Type          TransactionType   `gorm:"not null" json:"type"`
	Category      string            `gorm:"not null" json:"category"`
	PaymentMethod string            `gorm:"not null" json:"payment_method"`
	Description   string            `gorm:"not null" json:"description"`
	Status        TransactionStatus `gorm:"not null;default:completed" json:"status"`
}

// Magnitude returns the unsigned amount of the transaction.
func (t *Transaction) Magnitude() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
