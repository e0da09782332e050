package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/locks"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

type budgetFixture struct {
	db     *gorm.DB
	budget BudgetServicer
	ledger LedgerServicer
	user   *models.User
}

func newBudgetFixture(t *testing.T) *budgetFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	km := locks.NewKeyedMutex()
	return &budgetFixture{
		db:     db,
		budget: NewBudgetService(db, km),
		ledger: NewLedgerService(db, km),
		user:   testutil.CreateTestUser(t, db),
	}
}

func TestResolvePeriod(t *testing.T) {
	t.Run("auto-provisions an empty active period", func(t *testing.T) {
		f := newBudgetFixture(t)
		date := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

		period, err := f.budget.ResolvePeriod(f.user.ID, date)
		testutil.AssertNoError(t, err)

		wantStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
		if !period.StartDate.Equal(wantStart) || !period.EndDate.Equal(wantEnd) {
			t.Errorf("expected bounds %v..%v, got %v..%v", wantStart, wantEnd, period.StartDate, period.EndDate)
		}
		if period.Status != models.PeriodStatusActive {
			t.Errorf("expected active status, got %s", period.Status)
		}
		if len(period.Categories) != 0 {
			t.Errorf("expected no categories, got %d", len(period.Categories))
		}
		if period.TotalBudget != 0 {
			t.Errorf("expected zero total budget, got %d", period.TotalBudget)
		}
	})

	t.Run("returns the same period on repeat calls", func(t *testing.T) {
		f := newBudgetFixture(t)
		date := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)

		first, err := f.budget.ResolvePeriod(f.user.ID, date)
		testutil.AssertNoError(t, err)

		later := time.Date(2024, time.March, 28, 23, 0, 0, 0, time.UTC)
		second, err := f.budget.ResolvePeriod(f.user.ID, later)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected one period per month, got IDs %d and %d", first.ID, second.ID)
		}
	})

	t.Run("periods are scoped per user", func(t *testing.T) {
		f := newBudgetFixture(t)
		other := testutil.CreateTestUser(t, f.db)
		date := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

		mine, err := f.budget.ResolvePeriod(f.user.ID, date)
		testutil.AssertNoError(t, err)
		theirs, err := f.budget.ResolvePeriod(other.ID, date)
		testutil.AssertNoError(t, err)

		if mine.ID == theirs.ID {
			t.Error("expected distinct periods per user")
		}
	})
}

func TestReplaceCategoryAllocations(t *testing.T) {
	date := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates categories and recomputes the total", func(t *testing.T) {
		f := newBudgetFixture(t)

		period, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: 50000},
			{Name: "Entertainment", PlannedAmount: 20000},
		})
		testutil.AssertNoError(t, err)

		if len(period.Categories) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(period.Categories))
		}
		if period.TotalBudget != 70000 {
			t.Errorf("expected total budget 70000, got %d", period.TotalBudget)
		}
	})

	t.Run("preserves spent totals for surviving names", func(t *testing.T) {
		f := newBudgetFixture(t)

		_, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: 50000},
		})
		testutil.AssertNoError(t, err)

		_, err = f.ledger.PostExpense(f.user.ID, ExpenseInput{
			Date: date, Amount: 12000, Category: "Groceries",
		})
		testutil.AssertNoError(t, err)

		period, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: 30000},
			{Name: "Utilities", PlannedAmount: 10000},
		})
		testutil.AssertNoError(t, err)

		byName := make(map[string]models.BudgetCategory)
		for _, cat := range period.Categories {
			byName[cat.Name] = cat
		}
		if byName["Groceries"].SpentAmount != 12000 {
			t.Errorf("expected Groceries spent carried as 12000, got %d", byName["Groceries"].SpentAmount)
		}
		if byName["Utilities"].SpentAmount != 0 {
			t.Errorf("expected Utilities spent 0, got %d", byName["Utilities"].SpentAmount)
		}
	})

	t.Run("rejects unknown category names", func(t *testing.T) {
		f := newBudgetFixture(t)
		_, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Yachts", PlannedAmount: 100},
		})
		testutil.AssertAppError(t, err, "INVALID_BUDGET_CATEGORY")
	})

	t.Run("rejects duplicate category names", func(t *testing.T) {
		f := newBudgetFixture(t)
		_, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: 100},
			{Name: "Groceries", PlannedAmount: 200},
		})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY_NAME")
	})

	t.Run("rejects negative planned amounts", func(t *testing.T) {
		f := newBudgetFixture(t)
		_, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: -1},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("dropping a category discards its spent total", func(t *testing.T) {
		f := newBudgetFixture(t)

		_, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Groceries", PlannedAmount: 50000},
		})
		testutil.AssertNoError(t, err)
		_, err = f.ledger.PostExpense(f.user.ID, ExpenseInput{
			Date: date, Amount: 12000, Category: "Groceries",
		})
		testutil.AssertNoError(t, err)

		period, err := f.budget.ReplaceCategoryAllocations(f.user.ID, date, []CategoryAllocation{
			{Name: "Utilities", PlannedAmount: 10000},
		})
		testutil.AssertNoError(t, err)

		if len(period.Categories) != 1 || period.Categories[0].Name != "Utilities" {
			t.Fatalf("expected only Utilities, got %v", period.Categories)
		}
	})
}

func TestGetUserPeriods(t *testing.T) {
	f := newBudgetFixture(t)

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateTestPeriod(t, f.db, f.user.ID, jan)
	febPeriod := testutil.CreateTestPeriod(t, f.db, f.user.ID, feb)
	testutil.AssertNoError(t, f.db.Model(febPeriod).Update("status", models.PeriodStatusClosed).Error)

	t.Run("lists newest first", func(t *testing.T) {
		page, err := f.budget.GetUserPeriods(f.user.ID, pagination.PageRequest{}, nil)
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 periods, got %d", page.TotalItems)
		}
		if !page.Data[0].StartDate.After(page.Data[1].StartDate) {
			t.Error("expected periods ordered newest first")
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		closed := models.PeriodStatusClosed
		page, err := f.budget.GetUserPeriods(f.user.ID, pagination.PageRequest{}, &closed)
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 closed period, got %d", page.TotalItems)
		}
		if page.Data[0].Status != models.PeriodStatusClosed {
			t.Errorf("expected closed status, got %s", page.Data[0].Status)
		}
	})
}

func TestUpdatePeriodStatus(t *testing.T) {
	f := newBudgetFixture(t)
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	period := testutil.CreateTestPeriod(t, f.db, f.user.ID, date)

	updated, err := f.budget.UpdatePeriodStatus(f.user.ID, period.ID, models.PeriodStatusClosed)
	testutil.AssertNoError(t, err)
	if updated.Status != models.PeriodStatusClosed {
		t.Errorf("expected closed, got %s", updated.Status)
	}

	t.Run("rejects another user's period", func(t *testing.T) {
		other := testutil.CreateTestUser(t, f.db)
		_, err := f.budget.UpdatePeriodStatus(other.ID, period.ID, models.PeriodStatusActive)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestDeletePeriod(t *testing.T) {
	f := newBudgetFixture(t)
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	period, _ := testutil.CreateTestPeriodWithCategory(t, f.db, f.user.ID, date, "Groceries", 10000)

	testutil.AssertNoError(t, f.budget.DeletePeriod(f.user.ID, period.ID))

	_, err := f.budget.GetPeriodByID(f.user.ID, period.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	t.Run("same month can be provisioned again", func(t *testing.T) {
		fresh, err := f.budget.ResolvePeriod(f.user.ID, date)
		testutil.AssertNoError(t, err)
		if fresh.ID == period.ID {
			t.Error("expected a new period after deletion")
		}
		if len(fresh.Categories) != 0 {
			t.Errorf("expected fresh period without categories, got %d", len(fresh.Categories))
		}
	})
}
