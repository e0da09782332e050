package models

import "time"

// PeriodStatus represents the lifecycle state of a budget period
type PeriodStatus string

const (
	PeriodStatusActive PeriodStatus = "active"
	PeriodStatusClosed PeriodStatus = "closed"
)

// BudgetPeriod is one user's monthly budget envelope. StartDate and EndDate
// are inclusive date-only bounds and always span exactly one calendar month,
// so an exact-bounds lookup is sufficient to resolve the period containing
// any date.
type BudgetPeriod struct {
	Base
	UserID      uint         `gorm:"not null;uniqueIndex:idx_user_period,priority:1" json:"user_id"`
	StartDate   time.Time    `gorm:"not null;uniqueIndex:idx_user_period,priority:2" json:"start_date"`
	EndDate     time.Time    `gorm:"not null;uniqueIndex:idx_user_period,priority:3" json:"end_date"`
	Status      PeriodStatus `gorm:"not null;default:active" json:"status"`
	TotalBudget int64        `gorm:"not null;default:0" json:"total_budget"`
	TotalIncome int64        `gorm:"not null;default:0" json:"total_income"`

	// Relationships
	Categories []BudgetCategory `gorm:"foreignKey:BudgetPeriodID" json:"categories"`
}

// Closed reports whether the period no longer accepts expense postings.
func (p *BudgetPeriod) Closed() bool {
	return p.Status == PeriodStatusClosed
}

// BudgetCategory is a named spending bucket within a period. SpentAmount is
// a persisted running total of expense magnitudes posted against the
// category; the ledger keeps it synchronized with the transactions table.
type BudgetCategory struct {
	Base
	BudgetPeriodID uint   `gorm:"not null;uniqueIndex:idx_period_category,priority:1" json:"budget_period_id"`
	Name           string `gorm:"not null;uniqueIndex:idx_period_category,priority:2" json:"name"`
	PlannedAmount  int64  `gorm:"not null" json:"planned_amount"`
	SpentAmount    int64  `gorm:"not null;default:0" json:"spent_amount"`
	IsRecurring    bool   `gorm:"default:false" json:"is_recurring"`
	Notes          string `json:"notes"`
}

// Headroom returns the amount still available to spend in this category.
func (c *BudgetCategory) Headroom() int64 {
	return c.PlannedAmount - c.SpentAmount
}

// HasSpending is the precondition callers check before removing a category
// from a budget: a category with recorded spending should not be dropped.
func (c *BudgetCategory) HasSpending() bool {
	return c.SpentAmount > 0
}

// MonthBounds returns the canonical budget period boundaries containing the
// given date: the first through the last calendar day of its month, as
// date-only UTC values.
func MonthBounds(date time.Time) (start, end time.Time) {
	d := date.UTC()
	start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}
