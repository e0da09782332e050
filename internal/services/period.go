package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/models"
)

// periodKey is the serialization key for all ledger and budget writes
// touching the period containing date: one key per (user, month).
func periodKey(userID uint, date time.Time) string {
	start, _ := models.MonthBounds(date)
	return fmt.Sprintf("%d/%s", userID, start.Format("2006-01"))
}

// findPeriod looks up the user's budget period whose bounds are exactly the
// month containing date. Returns (nil, nil) when no period exists.
func findPeriod(tx *gorm.DB, userID uint, date time.Time) (*models.BudgetPeriod, error) {
	start, end := models.MonthBounds(date)

	var period models.BudgetPeriod
	err := tx.Where("user_id = ? AND start_date = ? AND end_date = ?", userID, start, end).
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageError(err)
	}
	return &period, nil
}
