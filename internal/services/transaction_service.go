package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// transactionService handles income records and the user-facing transaction
// listing. Expense mutations are delegated to the ledger service so every
// path that changes an expense also maintains the budget spent totals.
type transactionService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, ledger LedgerServicer) TransactionServicer {
	return &transactionService{db: db, ledger: ledger}
}

func validateIncome(in *IncomeInput) error {
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !models.ValidIncomeCategory(in.Category) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid income category")
	}
	if in.PaymentMethod != "" && !models.ValidPaymentMethod(in.PaymentMethod) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid payment method")
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	return nil
}

// AddIncome records an income transaction. When a budget period exists for
// the month of the income date its running income total is bumped in the
// same database transaction; income never touches category spent totals.
func (s *transactionService) AddIncome(userID uint, in IncomeInput) (*models.Transaction, error) {
	if err := validateIncome(&in); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txn := &models.Transaction{
			UserID:        userID,
			Date:          in.Date,
			Amount:        in.Amount, // income is stored positive
			Type:          models.TransactionTypeIncome,
			Category:      in.Category,
			PaymentMethod: in.PaymentMethod,
			Description:   in.Description,
			Status:        models.TransactionStatusCompleted,
		}
		if err := tx.Create(txn).Error; err != nil {
			return storageError(err)
		}

		period, err := findPeriod(tx, userID, in.Date)
		if err != nil {
			return err
		}
		if period != nil {
			if err := tx.Model(period).
				Update("total_income", gorm.Expr("total_income + ?", in.Amount)).Error; err != nil {
				return storageError(err)
			}
		}

		result = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateIncome updates the fields of an income transaction. Period income
// totals are adjusted for the delta when the affected months have budgets.
func (s *transactionService) UpdateIncome(userID, transactionID uint, in IncomeInput) (*models.Transaction, error) {
	if err := validateIncome(&in); err != nil {
		return nil, err
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Transaction
		if err := tx.Where("id = ? AND user_id = ? AND type = ?",
			transactionID, userID, models.TransactionTypeIncome).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return storageError(err)
		}

		oldPeriod, err := findPeriod(tx, userID, current.Date)
		if err != nil {
			return err
		}
		if oldPeriod != nil {
			if err := tx.Model(oldPeriod).
				Update("total_income", gorm.Expr("total_income - ?", current.Amount)).Error; err != nil {
				return storageError(err)
			}
		}

		newPeriod, err := findPeriod(tx, userID, in.Date)
		if err != nil {
			return err
		}
		if newPeriod != nil {
			if err := tx.Model(newPeriod).
				Update("total_income", gorm.Expr("total_income + ?", in.Amount)).Error; err != nil {
				return storageError(err)
			}
		}

		updates := map[string]interface{}{
			"date":           in.Date,
			"amount":         in.Amount,
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
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserTransactions returns a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		base = base.Where("category = ?", *filter.Category)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageError(err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, storageError(err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, storageError(err)
	}
	return &txn, nil
}

// DeleteTransaction removes a transaction. Expenses go through the ledger so
// the category spent total is reversed; income adjusts the period total.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if txn.Type == models.TransactionTypeExpense {
		return s.ledger.DeleteExpense(userID, transactionID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, userID, txn.Date)
		if err != nil {
			return err
		}
		if period != nil {
			// The decrement and its zero clamp run in SQL; the loaded
			// copy of the total may be stale.
			expr := gorm.Expr("CASE WHEN total_income >= ? THEN total_income - ? ELSE 0 END",
				txn.Amount, txn.Amount)
			if err := tx.Model(period).Update("total_income", expr).Error; err != nil {
				return storageError(err)
			}
		}
		if err := tx.Delete(txn).Error; err != nil {
			return storageError(err)
		}
		return nil
	})
}

// TotalIncome sums the user's income transactions between from and to,
// inclusive.
func (s *transactionService) TotalIncome(userID uint, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date >= ? AND date <= ?",
			userID, models.TransactionTypeIncome, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, storageError(err)
	}
	return total, nil
}
