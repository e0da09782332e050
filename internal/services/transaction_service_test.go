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

type transactionFixture struct {
	db           *gorm.DB
	transactions TransactionServicer
	ledger       LedgerServicer
	user         *models.User
}

func newTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	km := locks.NewKeyedMutex()
	ledger := NewLedgerService(db, km)
	return &transactionFixture{
		db:           db,
		transactions: NewTransactionService(db, ledger),
		ledger:       ledger,
		user:         testutil.CreateTestUser(t, db),
	}
}

func TestAddIncome(t *testing.T) {
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("stores income positive", func(t *testing.T) {
		f := newTransactionFixture(t)

		txn, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 500000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		if txn.Amount != 500000 {
			t.Errorf("expected stored amount 500000, got %d", txn.Amount)
		}
		if txn.Type != models.TransactionTypeIncome {
			t.Errorf("expected type income, got %s", txn.Type)
		}
	})

	t.Run("bumps the period income total when a budget exists", func(t *testing.T) {
		f := newTransactionFixture(t)
		period := testutil.CreateTestPeriod(t, f.db, f.user.ID, date)

		_, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 500000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		var got models.BudgetPeriod
		testutil.AssertNoError(t, f.db.First(&got, period.ID).Error)
		if got.TotalIncome != 500000 {
			t.Errorf("expected total income 500000, got %d", got.TotalIncome)
		}
	})

	t.Run("increments the stored total, not a loaded copy", func(t *testing.T) {
		f := newTransactionFixture(t)
		period := testutil.CreateTestPeriod(t, f.db, f.user.ID, date)

		// Another writer's contribution already in the row.
		testutil.AssertNoError(t, f.db.Model(period).Update("total_income", 100000).Error)

		_, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 500000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		var got models.BudgetPeriod
		testutil.AssertNoError(t, f.db.First(&got, period.ID).Error)
		if got.TotalIncome != 600000 {
			t.Errorf("expected total income 600000, got %d", got.TotalIncome)
		}
	})

	t.Run("succeeds without a budget period", func(t *testing.T) {
		f := newTransactionFixture(t)
		_, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 100, Category: "Freelance",
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("rejects invalid income categories", func(t *testing.T) {
		f := newTransactionFixture(t)
		_, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 100, Category: "Groceries",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		f := newTransactionFixture(t)
		_, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 0, Category: "Salary",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateIncome(t *testing.T) {
	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("adjusts the period income total", func(t *testing.T) {
		f := newTransactionFixture(t)
		period := testutil.CreateTestPeriod(t, f.db, f.user.ID, date)

		txn, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: date, Amount: 500000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		updated, err := f.transactions.UpdateIncome(f.user.ID, txn.ID, IncomeInput{
			Date: date, Amount: 450000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)
		if updated.Amount != 450000 {
			t.Errorf("expected amount 450000, got %d", updated.Amount)
		}

		var got models.BudgetPeriod
		testutil.AssertNoError(t, f.db.First(&got, period.ID).Error)
		if got.TotalIncome != 450000 {
			t.Errorf("expected total income 450000, got %d", got.TotalIncome)
		}
	})

	t.Run("rejects updating an expense through the income path", func(t *testing.T) {
		f := newTransactionFixture(t)
		expense := testutil.CreateTestExpense(t, f.db, f.user.ID, date, "Groceries", 100)

		_, err := f.transactions.UpdateIncome(f.user.ID, expense.ID, IncomeInput{
			Date: date, Amount: 100, Category: "Salary",
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	f := newTransactionFixture(t)
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	testutil.CreateTestExpense(t, f.db, f.user.ID, march, "Groceries", 1000)
	testutil.CreateTestExpense(t, f.db, f.user.ID, april, "Utilities", 2000)
	testutil.CreateTestIncome(t, f.db, f.user.ID, march, "Salary", 500000)

	other := testutil.CreateTestUser(t, f.db)
	testutil.CreateTestExpense(t, f.db, other.ID, march, "Groceries", 9999)

	t.Run("returns only the user's transactions newest first", func(t *testing.T) {
		page, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", page.TotalItems)
		}
		if !page.Data[0].Date.After(page.Data[len(page.Data)-1].Date) {
			t.Error("expected newest first ordering")
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		income := models.TransactionTypeIncome
		page, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{Type: &income})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 income transaction, got %d", page.TotalItems)
		}
	})

	t.Run("filters by date range", func(t *testing.T) {
		from := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
		page, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 transaction from April, got %d", page.TotalItems)
		}
	})

	t.Run("filters by category", func(t *testing.T) {
		category := "Groceries"
		page, err := f.transactions.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{Category: &category})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 Groceries transaction, got %d", page.TotalItems)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("expense deletion reverses the budget total", func(t *testing.T) {
		f := newTransactionFixture(t)
		_, cat := testutil.CreateTestPeriodWithCategory(t, f.db, f.user.ID, march, "Groceries", 20000)

		txn, err := f.ledger.PostExpense(f.user.ID, ExpenseInput{
			Date: march, Amount: 5000, Category: "Groceries",
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, f.transactions.DeleteTransaction(f.user.ID, txn.ID))

		var got models.BudgetCategory
		testutil.AssertNoError(t, f.db.First(&got, cat.ID).Error)
		if got.SpentAmount != 0 {
			t.Errorf("expected spent 0 after delete, got %d", got.SpentAmount)
		}
	})

	t.Run("income deletion lowers the period income total", func(t *testing.T) {
		f := newTransactionFixture(t)
		period := testutil.CreateTestPeriod(t, f.db, f.user.ID, march)

		txn, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: march, Amount: 500000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, f.transactions.DeleteTransaction(f.user.ID, txn.ID))

		var got models.BudgetPeriod
		testutil.AssertNoError(t, f.db.First(&got, period.ID).Error)
		if got.TotalIncome != 0 {
			t.Errorf("expected total income 0, got %d", got.TotalIncome)
		}
	})

	t.Run("clamps the income total at zero when it drifted low", func(t *testing.T) {
		f := newTransactionFixture(t)
		period := testutil.CreateTestPeriod(t, f.db, f.user.ID, march)

		txn, err := f.transactions.AddIncome(f.user.ID, IncomeInput{
			Date: march, Amount: 5000, Category: "Salary",
		})
		testutil.AssertNoError(t, err)

		// The total drifted below the transaction's amount; deleting must
		// clamp at zero, not go negative.
		testutil.AssertNoError(t, f.db.Model(period).Update("total_income", 2000).Error)
		testutil.AssertNoError(t, f.transactions.DeleteTransaction(f.user.ID, txn.ID))

		var got models.BudgetPeriod
		testutil.AssertNoError(t, f.db.First(&got, period.ID).Error)
		if got.TotalIncome != 0 {
			t.Errorf("expected total income clamped at 0, got %d", got.TotalIncome)
		}
	})

	t.Run("rejects another user's transaction", func(t *testing.T) {
		f := newTransactionFixture(t)
		txn := testutil.CreateTestIncome(t, f.db, f.user.ID, march, "Salary", 100)

		other := testutil.CreateTestUser(t, f.db)
		err := f.transactions.DeleteTransaction(other.ID, txn.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestTotalIncome(t *testing.T) {
	f := newTransactionFixture(t)
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)

	testutil.CreateTestIncome(t, f.db, f.user.ID, march, "Salary", 500000)
	testutil.CreateTestIncome(t, f.db, f.user.ID, march, "Freelance", 50000)
	testutil.CreateTestIncome(t, f.db, f.user.ID, april, "Salary", 500000)
	testutil.CreateTestExpense(t, f.db, f.user.ID, march, "Groceries", 1000)

	t.Run("sums income inside the range", func(t *testing.T) {
		from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

		total, err := f.transactions.TotalIncome(f.user.ID, from, to)
		testutil.AssertNoError(t, err)
		if total != 550000 {
			t.Errorf("expected total 550000, got %d", total)
		}
	})

	t.Run("returns zero for an empty range", func(t *testing.T) {
		from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

		total, err := f.transactions.TotalIncome(f.user.ID, from, to)
		testutil.AssertNoError(t, err)
		if total != 0 {
			t.Errorf("expected total 0, got %d", total)
		}
	})
}
