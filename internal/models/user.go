package models

// User represents the user model in the database
type User struct {
	Base
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	Password         string `gorm:"not null" json:"-"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	IsActive         bool   `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string `gorm:"size:64" json:"-"`

	BudgetPeriods []BudgetPeriod `gorm:"foreignKey:UserID" json:"budget_periods,omitempty"`
	Transactions  []Transaction  `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	SavingsGoals  []SavingsGoal  `gorm:"foreignKey:UserID" json:"savings_goals,omitempty"`
}
