package models

import (
	"slices"
	"time"
)

// GoalPriority represents the priority of a savings goal
type GoalPriority string

const (
	GoalPriorityLow    GoalPriority = "Low"
	GoalPriorityMedium GoalPriority = "Medium"
	GoalPriorityHigh   GoalPriority = "High"
)

// GoalCategories is the fixed set of savings goal categories.
var GoalCategories = []string{
	"Emergency",
	"Travel",
	"Education",
	"Home",
	"Vehicle",
	"Retirement",
	"Other",
}

// ValidGoalCategory reports whether name is a member of the goal category set.
func ValidGoalCategory(name string) bool {
	return slices.Contains(GoalCategories, name)
}

// SavingsGoal represents a savings target the user is working toward.
type SavingsGoal struct {
	Base
	UserID        uint         `gorm:"not null;index" json:"user_id"`
	Name          string       `gorm:"not null" json:"name"`
	TargetAmount  int64        `gorm:"not null" json:"target_amount"`
	CurrentAmount int64        `gorm:"not null;default:0" json:"current_amount"`
	TargetDate    time.Time    `gorm:"not null" json:"target_date"`
	Category      string       `gorm:"not null" json:"category"`
	Priority      GoalPriority `gorm:"not null" json:"priority"`
	Notes         string       `json:"notes"`
}
