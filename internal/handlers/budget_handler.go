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

// BudgetHandler handles budget period endpoints.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CategoryAllocationRequest is one planned spending bucket in a budget.
type CategoryAllocationRequest struct {
	Name          string `json:"name" binding:"required,expense_category" example:"Groceries"`
	PlannedAmount int64  `json:"planned_amount" binding:"gte=0" example:"50000"`
	IsRecurring   bool   `json:"is_recurring" example:"true"`
	Notes         string `json:"notes" example:"Weekly shop"`
}

// PeriodRequest selects the budget month. Only the start date is used for
// resolution; the server normalizes the period to calendar month bounds.
type PeriodRequest struct {
	Start string `json:"start" binding:"required" example:"2026-03-01"`
	End   string `json:"end" example:"2026-03-31"`
}

// SetBudgetRequest represents the budget replacement request body. The total
// budget is accepted for compatibility but always recomputed server-side as
// the sum of planned amounts.
type SetBudgetRequest struct {
	Period      PeriodRequest               `json:"period" binding:"required"`
	Categories  []CategoryAllocationRequest `json:"categories" binding:"required,dive"`
	TotalBudget int64                       `json:"total_budget"`
}

// UpdateBudgetRequest represents a budget period status change.
type UpdateBudgetRequest struct {
	Status models.PeriodStatus `json:"status" binding:"required,period_status" example:"closed"`
}

func parseBudgetDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"date must be in YYYY-MM-DD format")
	}
	return date, nil
}

// SetBudget godoc
// @Summary Set the budget for a month
// @Description Replace the category allocations of the budget period containing the given date, creating the period if needed. Spent totals are preserved for categories whose name survives.
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetBudgetRequest true "Budget allocations"
// @Success 201 {object} models.BudgetPeriod
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	date, err := parseBudgetDate(req.Period.Start)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocations := make([]services.CategoryAllocation, 0, len(req.Categories))
	for _, cat := range req.Categories {
		allocations = append(allocations, services.CategoryAllocation{
			Name:          cat.Name,
			PlannedAmount: cat.PlannedAmount,
			IsRecurring:   cat.IsRecurring,
			Notes:         cat.Notes,
		})
	}

	period, err := h.budgetService.ReplaceCategoryAllocations(userID, date, allocations)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_BUDGET", "budget_period", period.ID, c.ClientIP(), map[string]interface{}{
		"start_date":   period.StartDate,
		"total_budget": period.TotalBudget,
		"categories":   len(period.Categories),
	})
	c.JSON(http.StatusCreated, period)
}

// GetBudgetPeriod godoc
// @Summary Get the budget period for a month
// @Description Return the budget period containing the given start date, auto-provisioning an empty active period when none exists
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param start query string false "Date inside the month (YYYY-MM-DD, default today)"
// @Param end query string false "Accepted for compatibility, ignored"
// @Success 200 {object} models.BudgetPeriod
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /budgets/period [get]
func (h *BudgetHandler) GetBudgetPeriod(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	date := time.Now()
	if raw := c.Query("start"); raw != "" {
		parsed, err := parseBudgetDate(raw)
		if err != nil {
			respondWithError(c, err)
			return
		}
		date = parsed
	}

	period, err := h.budgetService.ResolvePeriod(userID, date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

// GetBudgets godoc
// @Summary List budget periods
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Filter by status (active or closed)"
// @Success 200 {object} pagination.PageResponse[models.BudgetPeriod]
// @Failure 401 {object} ErrorResponse
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.PeriodStatus
	if raw := c.Query("status"); raw != "" {
		s := models.PeriodStatus(raw)
		if s != models.PeriodStatusActive && s != models.PeriodStatusClosed {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status filter"))
			return
		}
		status = &s
	}

	periods, err := h.budgetService.GetUserPeriods(userID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, periods)
}

// GetBudgetByID godoc
// @Summary Get a budget period by ID
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget period ID"
// @Success 200 {object} models.BudgetPeriod
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	periodID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	period, err := h.budgetService.GetPeriodByID(userID, periodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

// UpdateBudget godoc
// @Summary Close or reopen a budget period
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget period ID"
// @Param request body UpdateBudgetRequest true "New status"
// @Success 200 {object} models.BudgetPeriod
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	periodID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.budgetService.UpdatePeriodStatus(userID, periodID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET_STATUS", "budget_period", period.ID, c.ClientIP(), map[string]interface{}{
		"status": req.Status,
	})
	c.JSON(http.StatusOK, period)
}

// DeleteBudget godoc
// @Summary Delete a budget period
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget period ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	periodID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	if err := h.budgetService.DeletePeriod(userID, periodID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget_period", periodID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Budget deleted successfully"})
}
