package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// SavingsGoalHandler handles savings goal endpoints.
type SavingsGoalHandler struct {
	goalService  services.SavingsGoalServicer
	auditService services.AuditServicer
}

// NewSavingsGoalHandler creates a new SavingsGoalHandler.
func NewSavingsGoalHandler(goalService services.SavingsGoalServicer, auditService services.AuditServicer) *SavingsGoalHandler {
	return &SavingsGoalHandler{goalService: goalService, auditService: auditService}
}

// SavingsGoalRequest represents a savings goal create/update request body.
type SavingsGoalRequest struct {
	Name          string              `json:"name" binding:"required" example:"Emergency fund"`
	TargetAmount  int64               `json:"target_amount" binding:"required,gt=0" example:"1000000"`
	TargetDate    string              `json:"target_date" example:"2027-06-30"`
	Category      string              `json:"category" binding:"required,goal_category" example:"Emergency"`
	Priority      models.GoalPriority `json:"priority" binding:"omitempty,goal_priority" example:"High"`
	CurrentAmount *int64              `json:"current_amount" binding:"omitempty,gte=0" example:"250000"`
	Notes         string              `json:"notes"`
}

func (r *SavingsGoalRequest) toInput() (services.SavingsGoalInput, error) {
	var targetDate time.Time
	if r.TargetDate != "" {
		parsed, err := time.Parse("2006-01-02", r.TargetDate)
		if err != nil {
			return services.SavingsGoalInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"target_date must be in YYYY-MM-DD format")
		}
		targetDate = parsed
	}
	return services.SavingsGoalInput{
		Name:         r.Name,
		TargetAmount: r.TargetAmount,
		TargetDate:   targetDate,
		Category:     r.Category,
		Priority:     r.Priority,
		Notes:        r.Notes,
	}, nil
}

// CreateGoal godoc
// @Summary Create a savings goal
// @Tags savings-goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SavingsGoalRequest true "Goal details"
// @Success 201 {object} models.SavingsGoal
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /savings-goals [post]
func (h *SavingsGoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req SavingsGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "savings_goal", goal.ID, c.ClientIP(), map[string]interface{}{
		"name":          goal.Name,
		"target_amount": goal.TargetAmount,
	})
	c.JSON(http.StatusCreated, goal)
}

// GetGoals godoc
// @Summary List savings goals
// @Tags savings-goals
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} pagination.PageResponse[models.SavingsGoal]
// @Failure 401 {object} ErrorResponse
// @Router /savings-goals [get]
func (h *SavingsGoalHandler) GetGoals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goals, err := h.goalService.GetUserGoals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

// GetGoalByID godoc
// @Summary Get a savings goal by ID
// @Tags savings-goals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings goal ID"
// @Success 200 {object} models.SavingsGoal
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /savings-goals/{id} [get]
func (h *SavingsGoalHandler) GetGoalByID(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	goalID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// UpdateGoal godoc
// @Summary Update a savings goal
// @Tags savings-goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings goal ID"
// @Param request body SavingsGoalRequest true "Updated fields"
// @Success 200 {object} models.SavingsGoal
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /savings-goals/{id} [put]
func (h *SavingsGoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	goalID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req SavingsGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, in, req.CurrentAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_GOAL", "savings_goal", goal.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, goal)
}

// DeleteGoal godoc
// @Summary Delete a savings goal
// @Tags savings-goals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Savings goal ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /savings-goals/{id} [delete]
func (h *SavingsGoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	goalID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "savings_goal", goalID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Savings goal deleted successfully"})
}
