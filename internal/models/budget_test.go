package models

import (
	"testing"
	"time"
)

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid-month",
			date:      time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "leap february",
			date:      time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "non-leap february",
			date:      time.Date(2023, time.February, 14, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls into next year",
			date:      time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthBounds(tt.date)
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("MonthBounds(%v) = %v..%v, want %v..%v",
					tt.date, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestBudgetCategoryHelpers(t *testing.T) {
	cat := BudgetCategory{PlannedAmount: 20000, SpentAmount: 5000}

	if got := cat.Headroom(); got != 15000 {
		t.Errorf("Headroom() = %d, want 15000", got)
	}
	if !cat.HasSpending() {
		t.Error("HasSpending() = false for spent 5000")
	}

	empty := BudgetCategory{PlannedAmount: 20000}
	if empty.HasSpending() {
		t.Error("HasSpending() = true for zero spent")
	}
}

func TestTransactionMagnitude(t *testing.T) {
	expense := Transaction{Amount: -2500, Type: TransactionTypeExpense}
	if got := expense.Magnitude(); got != 2500 {
		t.Errorf("Magnitude() = %d, want 2500", got)
	}

	income := Transaction{Amount: 500000, Type: TransactionTypeIncome}
	if got := income.Magnitude(); got != 500000 {
		t.Errorf("Magnitude() = %d, want 500000", got)
	}
}
