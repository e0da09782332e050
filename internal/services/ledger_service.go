package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/locks"
	"pennywise/internal/models"
)

// ledgerService keeps each budget category's spent total an accurate sum of
// the expense transactions posted against it, and rejects postings that
// would breach the planned ceiling.
//
// Every mutation acquires the (user, month) key before its read-check-write
// sequence and runs both writes (transaction row + category total) inside a
// single database transaction, so concurrent postings cannot jointly
// overshoot a ceiling and a failed write never leaves the two out of sync.
type ledgerService struct {
	db    *gorm.DB
	locks *locks.KeyedMutex
}

// NewLedgerService creates a new LedgerServicer. The keyed mutex must be the
// same instance the budget service uses.
func NewLedgerService(db *gorm.DB, km *locks.KeyedMutex) LedgerServicer {
	return &ledgerService{db: db, locks: km}
}

// errStaleLockKeys signals that the keys held for a mutation no longer
// cover the transaction's month; the caller restarts with fresh keys.
var errStaleLockKeys = errors.New("held lock keys no longer cover the transaction's month")

// budgetExceeded builds the BUDGET_EXCEEDED error carrying the remaining
// headroom so clients can render it.
func budgetExceeded(category string, headroom int64) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrBudgetExceeded,
		fmt.Sprintf("This expense would exceed the budget for %s. Remaining budget: $%.2f",
			category, float64(headroom)/100))
}

func (s *ledgerService) validateExpense(in *ExpenseInput) error {
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Category == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	return nil
}

// findCategory loads the named category of a period.
// Returns ErrInvalidBudgetCategory when the period has no such entry.
func findCategory(tx *gorm.DB, periodID uint, name string) (*models.BudgetCategory, error) {
	var category models.BudgetCategory
	err := tx.Where("budget_period_id = ? AND name = ?", periodID, name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidBudgetCategory
		}
		return nil, storageError(err)
	}
	return &category, nil
}

// PostExpense books a new expense against the budget category of the period
// containing the expense date. Posting requires a pre-existing budget:
// unlike the fetch-or-create budget endpoint, it never auto-provisions.
// On any failure no transaction is created and no total changes.
func (s *ledgerService) PostExpense(userID uint, in ExpenseInput) (*models.Transaction, error) {
	if err := s.validateExpense(&in); err != nil {
		return nil, err
	}

	unlock := s.locks.LockAll(periodKey(userID, in.Date))
	defer unlock()

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, userID, in.Date)
		if err != nil {
			return err
		}
		if period == nil {
			return apperrors.ErrNoBudgetForPeriod
		}
		if period.Closed() {
			return apperrors.ErrPeriodClosed
		}

		category, err := findCategory(tx, period.ID, in.Category)
		if err != nil {
			return err
		}

		projected := category.SpentAmount + in.Amount
		if projected > category.PlannedAmount {
			return budgetExceeded(in.Category, category.Headroom())
		}

		txn := &models.Transaction{
			UserID:        userID,
			Date:          in.Date,
			Amount:        -in.Amount, // expenses are stored negative
			Type:          models.TransactionTypeExpense,
			Category:      in.Category,
			PaymentMethod: in.PaymentMethod,
			Description:   in.Description,
			Status:        models.TransactionStatusCompleted,
		}
		if err := tx.Create(txn).Error; err != nil {
			return storageError(err)
		}

		if err := tx.Model(category).Update("spent_amount", projected).Error; err != nil {
			return storageError(err)
		}

		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateExpense moves an expense between categories and/or changes its
// amount. The old magnitude is reversed from the old category (clamped at
// zero, tolerating a missing old period or category) and the new magnitude
// applied to the new one; when both resolve to the same category row the
// change is applied as one computed delta so the total never transiently
// double-counts. The ceiling is not re-validated on update: an already
// over-budget state is tolerated on edit.
func (s *ledgerService) UpdateExpense(userID, transactionID uint, in ExpenseInput) (*models.Transaction, error) {
	if err := s.validateExpense(&in); err != nil {
		return nil, err
	}

	// The first read is only for the lock keys; the authoritative state is
	// re-read under the lock. A concurrent update can move the expense to
	// another month between that read and lock acquisition, so the re-read
	// verifies the held keys still cover the row's month and the whole
	// sequence restarts with fresh keys when they do not.
	txn, err := s.getExpense(userID, transactionID)
	if err != nil {
		return nil, err
	}
	lockDate := txn.Date

	for {
		oldKey := periodKey(userID, lockDate)
		newKey := periodKey(userID, in.Date)
		unlock := s.locks.LockAll(oldKey, newKey)

		var result *models.Transaction
		err = s.db.Transaction(func(tx *gorm.DB) error {
			var current models.Transaction
			if err := tx.Where("id = ? AND user_id = ? AND type = ?",
				transactionID, userID, models.TransactionTypeExpense).
				First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrTransactionNotFound
				}
				return storageError(err)
			}
			if key := periodKey(userID, current.Date); key != oldKey && key != newKey {
				lockDate = current.Date
				return errStaleLockKeys
			}
			oldMagnitude := current.Magnitude()

			oldPeriod, err := findPeriod(tx, userID, current.Date)
			if err != nil {
				return err
			}
			newPeriod, err := findPeriod(tx, userID, in.Date)
			if err != nil {
				return err
			}
			if newPeriod == nil {
				return apperrors.ErrNoBudgetForPeriod
			}

			newCategory, err := findCategory(tx, newPeriod.ID, in.Category)
			if err != nil {
				return err
			}

			sameBucket := oldPeriod != nil && oldPeriod.ID == newPeriod.ID && current.Category == in.Category
			if sameBucket {
				spent := newCategory.SpentAmount + (in.Amount - oldMagnitude)
				if spent < 0 {
					spent = 0
				}
				if err := tx.Model(newCategory).Update("spent_amount", spent).Error; err != nil {
					return storageError(err)
				}
			} else {
				if oldPeriod != nil {
					var oldCategory models.BudgetCategory
					err := tx.Where("budget_period_id = ? AND name = ?", oldPeriod.ID, current.Category).
						First(&oldCategory).Error
					switch {
					case err == nil:
						spent := oldCategory.SpentAmount - oldMagnitude
						if spent < 0 {
							spent = 0
						}
						if err := tx.Model(&oldCategory).Update("spent_amount", spent).Error; err != nil {
							return storageError(err)
						}
					case !errors.Is(err, gorm.ErrRecordNotFound):
						return storageError(err)
					}
				}

				spent := newCategory.SpentAmount + in.Amount
				if err := tx.Model(newCategory).Update("spent_amount", spent).Error; err != nil {
					return storageError(err)
				}
			}

			updates := map[string]interface{}{
				"date":           in.Date,
				"amount":         -in.Amount,
				"category":       in.Category,
				"payment_method": in.PaymentMethod,
				"description":    in.Description,
			}
			if err := tx.Model(&current).Updates(updates).Error; err != nil {
				return storageError(err)
			}

			result = &current
			return nil
		})
		unlock()
		if errors.Is(err, errStaleLockKeys) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// DeleteExpense removes an expense and reverses its magnitude from the
// owning category's spent total, clamped at zero. A missing period or
// category is tolerated: the transaction is still deleted.
func (s *ledgerService) DeleteExpense(userID, transactionID uint) error {
	txn, err := s.getExpense(userID, transactionID)
	if err != nil {
		return err
	}
	lockDate := txn.Date

	for {
		key := periodKey(userID, lockDate)
		unlock := s.locks.LockAll(key)

		err = s.db.Transaction(func(tx *gorm.DB) error {
			var current models.Transaction
			if err := tx.Where("id = ? AND user_id = ? AND type = ?",
				transactionID, userID, models.TransactionTypeExpense).
				First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrTransactionNotFound
				}
				return storageError(err)
			}
			if currentKey := periodKey(userID, current.Date); currentKey != key {
				lockDate = current.Date
				return errStaleLockKeys
			}

			period, err := findPeriod(tx, userID, current.Date)
			if err != nil {
				return err
			}
			if period != nil {
				var category models.BudgetCategory
				err := tx.Where("budget_period_id = ? AND name = ?", period.ID, current.Category).
					First(&category).Error
				switch {
				case err == nil:
					spent := category.SpentAmount - current.Magnitude()
					if spent < 0 {
						spent = 0
					}
					if err := tx.Model(&category).Update("spent_amount", spent).Error; err != nil {
						return storageError(err)
					}
				case !errors.Is(err, gorm.ErrRecordNotFound):
					return storageError(err)
				}
			}

			if err := tx.Delete(&current).Error; err != nil {
				return storageError(err)
			}
			return nil
		})
		unlock()
		if errors.Is(err, errStaleLockKeys) {
			continue
		}
		return err
	}
}

// getExpense loads an expense transaction owned by the user. Ownership
// mismatches surface as not-found.
func (s *ledgerService) getExpense(userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ? AND user_id = ? AND type = ?",
		transactionID, userID, models.TransactionTypeExpense).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, storageError(err)
	}
	return &txn, nil
}
