package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/locks"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// budgetService handles budget period management. It shares the keyed mutex
// with the ledger service: replacing category allocations reads and rewrites
// the same spent totals the ledger maintains, so both must serialize on the
// same (user, month) key.
type budgetService struct {
	db    *gorm.DB
	locks *locks.KeyedMutex
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, km *locks.KeyedMutex) BudgetServicer {
	return &budgetService{db: db, locks: km}
}

// ResolvePeriod returns the user's budget period for the month containing
// date, creating an empty active one when none exists. An auto-provisioned
// period has no categories and a zero total budget, so "no budget set" and
// "budget explicitly zero" look the same; callers that must block
// unbudgeted spending check the category list instead.
func (s *budgetService) ResolvePeriod(userID uint, date time.Time) (*models.BudgetPeriod, error) {
	unlock := s.locks.LockAll(periodKey(userID, date))
	defer unlock()

	var result *models.BudgetPeriod
	err := s.db.Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, userID, date)
		if err != nil {
			return err
		}

		if period == nil {
			start, end := models.MonthBounds(date)
			period = &models.BudgetPeriod{
				UserID:    userID,
				StartDate: start,
				EndDate:   end,
				Status:    models.PeriodStatusActive,
			}
			if err := tx.Create(period).Error; err != nil {
				return storageError(err)
			}
		}

		if err := tx.Preload("Categories").First(period, period.ID).Error; err != nil {
			return storageError(err)
		}
		result = period
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceCategoryAllocations replaces the category list of the period
// containing date. Spent amounts are carried forward for categories whose
// name survives the replacement; the total budget is recomputed as the sum
// of planned amounts. The period is created when absent.
func (s *budgetService) ReplaceCategoryAllocations(userID uint, date time.Time, categories []CategoryAllocation) (*models.BudgetPeriod, error) {
	seen := make(map[string]bool, len(categories))
	for _, alloc := range categories {
		if !models.ValidExpenseCategory(alloc.Name) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidBudgetCategory,
				fmt.Sprintf("%s is not a valid budget category", alloc.Name))
		}
		if alloc.PlannedAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "planned amount must not be negative")
		}
		if seen[alloc.Name] {
			return nil, apperrors.ErrDuplicateCategoryName
		}
		seen[alloc.Name] = true
	}

	unlock := s.locks.LockAll(periodKey(userID, date))
	defer unlock()

	var result *models.BudgetPeriod
	err := s.db.Transaction(func(tx *gorm.DB) error {
		period, err := findPeriod(tx, userID, date)
		if err != nil {
			return err
		}
		if period == nil {
			start, end := models.MonthBounds(date)
			period = &models.BudgetPeriod{
				UserID:    userID,
				StartDate: start,
				EndDate:   end,
				Status:    models.PeriodStatusActive,
			}
			if err := tx.Create(period).Error; err != nil {
				return storageError(err)
			}
		}

		// Carry forward existing spent totals by category name.
		var existing []models.BudgetCategory
		if err := tx.Where("budget_period_id = ?", period.ID).Find(&existing).Error; err != nil {
			return storageError(err)
		}
		spentByName := make(map[string]int64, len(existing))
		for _, cat := range existing {
			spentByName[cat.Name] = cat.SpentAmount
		}

		if err := tx.Unscoped().Where("budget_period_id = ?", period.ID).
			Delete(&models.BudgetCategory{}).Error; err != nil {
			return storageError(err)
		}

		var totalBudget int64
		for _, alloc := range categories {
			cat := models.BudgetCategory{
				BudgetPeriodID: period.ID,
				Name:           alloc.Name,
				PlannedAmount:  alloc.PlannedAmount,
				SpentAmount:    spentByName[alloc.Name],
				IsRecurring:    alloc.IsRecurring,
				Notes:          alloc.Notes,
			}
			if err := tx.Create(&cat).Error; err != nil {
				return storageError(err)
			}
			totalBudget += alloc.PlannedAmount
		}

		if err := tx.Model(period).Update("total_budget", totalBudget).Error; err != nil {
			return storageError(err)
		}

		if err := tx.Preload("Categories").First(period, period.ID).Error; err != nil {
			return storageError(err)
		}
		result = period
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserPeriods returns a paginated list of the user's budget periods,
// newest first, with an optional status filter.
func (s *budgetService) GetUserPeriods(userID uint, page pagination.PageRequest, status *models.PeriodStatus) (*pagination.PageResponse[models.BudgetPeriod], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetPeriod{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageError(err)
	}

	var periods []models.BudgetPeriod
	if err := base.Preload("Categories").Scopes(pagination.Paginate(page)).
		Order("start_date DESC").
		Find(&periods).Error; err != nil {
		return nil, storageError(err)
	}

	result := pagination.NewPageResponse(periods, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPeriodByID returns a budget period by ID if it belongs to the user.
func (s *budgetService) GetPeriodByID(userID, periodID uint) (*models.BudgetPeriod, error) {
	var period models.BudgetPeriod
	if err := s.db.Preload("Categories").
		Where("id = ? AND user_id = ?", periodID, userID).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, storageError(err)
	}
	return &period, nil
}

// UpdatePeriodStatus closes or reopens a budget period. Closed periods
// reject new expense postings.
func (s *budgetService) UpdatePeriodStatus(userID, periodID uint, status models.PeriodStatus) (*models.BudgetPeriod, error) {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.LockAll(periodKey(userID, period.StartDate))
	defer unlock()

	if err := s.db.Model(period).Update("status", status).Error; err != nil {
		return nil, storageError(err)
	}
	period.Status = status
	return period, nil
}

// DeletePeriod removes a budget period and its categories. Periods are only
// deleted by explicit user action.
func (s *budgetService) DeletePeriod(userID, periodID uint) error {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return err
	}

	unlock := s.locks.LockAll(periodKey(userID, period.StartDate))
	defer unlock()

	// Hard delete: the (user, start, end) unique index must stay free for a
	// later re-provisioning of the same month.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("budget_period_id = ?", period.ID).
			Delete(&models.BudgetCategory{}).Error; err != nil {
			return storageError(err)
		}
		if err := tx.Unscoped().Delete(period).Error; err != nil {
			return storageError(err)
		}
		return nil
	})
}
