package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// savingsGoalService handles savings goal management.
type savingsGoalService struct {
	db *gorm.DB
}

// NewSavingsGoalService creates a new SavingsGoalServicer.
func NewSavingsGoalService(db *gorm.DB) SavingsGoalServicer {
	return &savingsGoalService{db: db}
}

func validateGoal(in *SavingsGoalInput) error {
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.TargetAmount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if !models.ValidGoalCategory(in.Category) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid goal category")
	}
	if in.Priority == "" {
		in.Priority = models.GoalPriorityMedium
	}
	return nil
}

// CreateGoal creates a new savings goal for the user.
func (s *savingsGoalService) CreateGoal(userID uint, in SavingsGoalInput) (*models.SavingsGoal, error) {
	if err := validateGoal(&in); err != nil {
		return nil, err
	}

	goal := &models.SavingsGoal{
		UserID:       userID,
		Name:         in.Name,
		TargetAmount: in.TargetAmount,
		TargetDate:   in.TargetDate,
		Category:     in.Category,
		Priority:     in.Priority,
		Notes:        in.Notes,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, storageError(err)
	}
	return goal, nil
}

// GetUserGoals returns a paginated list of the user's savings goals.
func (s *savingsGoalService) GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.SavingsGoal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, storageError(err)
	}

	var goals []models.SavingsGoal
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, storageError(err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID returns a savings goal by ID if it belongs to the user.
func (s *savingsGoalService) GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingsGoalNotFound
		}
		return nil, storageError(err)
	}
	return &goal, nil
}

// UpdateGoal updates a savings goal. The current amount only changes when
// the caller passes one explicitly.
func (s *savingsGoalService) UpdateGoal(userID, goalID uint, in SavingsGoalInput, currentAmount *int64) (*models.SavingsGoal, error) {
	if err := validateGoal(&in); err != nil {
		return nil, err
	}

	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":          in.Name,
		"target_amount": in.TargetAmount,
		"target_date":   in.TargetDate,
		"category":      in.Category,
		"priority":      in.Priority,
		"notes":         in.Notes,
	}
	if currentAmount != nil {
		if *currentAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount must not be negative")
		}
		updates["current_amount"] = *currentAmount
	}

	if err := s.db.Model(goal).Updates(updates).Error; err != nil {
		return nil, storageError(err)
	}
	return goal, nil
}

// DeleteGoal removes a savings goal.
func (s *savingsGoalService) DeleteGoal(userID, goalID uint) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return storageError(err)
	}
	return nil
}
