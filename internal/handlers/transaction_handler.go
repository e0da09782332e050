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

// TransactionHandler handles transaction endpoints. Expenses are posted
// through the ledger service so budget ceilings are enforced; income goes
// through the transaction service.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	ledgerService      services.LedgerServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, ledgerService services.LedgerServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		ledgerService:      ledgerService,
		auditService:       auditService,
	}
}

// ExpenseRequest represents an expense create/update request body. Amount is
// the unsigned magnitude in cents.
type ExpenseRequest struct {
	Date          string `json:"date" example:"2026-03-15"`
	Amount        int64  `json:"amount" binding:"required,gt=0" example:"2500"`
	Category      string `json:"category" binding:"required,expense_category" example:"Groceries"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,payment_method" example:"Credit Card"`
	Description   string `json:"description" example:"Supermarket"`
}

// IncomeRequest represents an income create/update request body.
type IncomeRequest struct {
	Date          string `json:"date" example:"2026-03-01"`
	Amount        int64  `json:"amount" binding:"required,gt=0" example:"500000"`
	Category      string `json:"category" binding:"required,income_category" example:"Salary"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,payment_method" example:"Bank Transfer"`
	Description   string `json:"description" example:"March salary"`
}

// TransactionResponse wraps a transaction with a confirmation message.
type TransactionResponse struct {
	Message     string              `json:"message"`
	Transaction *models.Transaction `json:"transaction"`
}

// IncomeTotalResponse represents an income total over a date range.
type IncomeTotalResponse struct {
	Total int64  `json:"total"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func parseOptionalDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"date must be in YYYY-MM-DD format")
	}
	return date, nil
}

func (r *ExpenseRequest) toInput() (services.ExpenseInput, error) {
	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{
		Date:          date,
		Amount:        r.Amount,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}, nil
}

func (r *IncomeRequest) toInput() (services.IncomeInput, error) {
	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return services.IncomeInput{}, err
	}
	return services.IncomeInput{
		Date:          date,
		Amount:        r.Amount,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}, nil
}

// AddExpense godoc
// @Summary Add an expense
// @Description Post an expense against the budget category of its month. Rejected when no budget exists for the period, the period is closed, the category is not budgeted, or the posting would exceed the category ceiling.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense details"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /transactions/expense [post]
func (h *TransactionHandler) AddExpense(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.ledgerService.PostExpense(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_EXPENSE", "transaction", txn.ID, c.ClientIP(), map[string]interface{}{
		"amount":   txn.Amount,
		"category": txn.Category,
	})
	c.JSON(http.StatusCreated, TransactionResponse{
		Message:     "Expense added successfully",
		Transaction: txn,
	})
}

// AddIncome godoc
// @Summary Add an income record
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IncomeRequest true "Income details"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /transactions/income [post]
func (h *TransactionHandler) AddIncome(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.AddIncome(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_INCOME", "transaction", txn.ID, c.ClientIP(), map[string]interface{}{
		"amount":   txn.Amount,
		"category": txn.Category,
	})
	c.JSON(http.StatusCreated, TransactionResponse{
		Message:     "Income added successfully",
		Transaction: txn,
	})
}

// GetTransactions godoc
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param from query string false "Earliest date (YYYY-MM-DD)"
// @Param to query string false "Latest date (YYYY-MM-DD)"
// @Param type query string false "Filter by type (income or expense)"
// @Param category query string false "Filter by category"
// @Success 200 {object} pagination.PageResponse[models.Transaction]
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.TransactionFilter
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	filter.FromDate = from
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	filter.ToDate = to

	if raw := c.Query("type"); raw != "" {
		t := models.TransactionType(raw)
		if t != models.TransactionTypeIncome && t != models.TransactionTypeExpense {
			respondWithError(c, apperrors.ErrInvalidTransactionType)
			return
		}
		filter.Type = &t
	}
	if raw := c.Query("category"); raw != "" {
		filter.Category = &raw
	}

	transactions, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetTransactionByID godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	transactionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, txn)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Update a transaction's fields. The type cannot change; expense updates rebalance the affected budget category totals.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body ExpenseRequest true "Updated fields"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	transactionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	existing, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var txn *models.Transaction
	switch existing.Type {
	case models.TransactionTypeExpense:
		var req ExpenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		in, err := req.toInput()
		if err != nil {
			respondWithError(c, err)
			return
		}
		txn, err = h.ledgerService.UpdateExpense(userID, transactionID, in)
		if err != nil {
			respondWithError(c, err)
			return
		}
	case models.TransactionTypeIncome:
		var req IncomeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		in, err := req.toInput()
		if err != nil {
			respondWithError(c, err)
			return
		}
		txn, err = h.transactionService.UpdateIncome(userID, transactionID, in)
		if err != nil {
			respondWithError(c, err)
			return
		}
	default:
		respondWithError(c, apperrors.ErrInvalidTransactionType)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", txn.ID, c.ClientIP(), map[string]interface{}{
		"amount":   txn.Amount,
		"category": txn.Category,
	})
	c.JSON(http.StatusOK, TransactionResponse{
		Message:     "Transaction updated successfully",
		Transaction: txn,
	})
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Delete a transaction. Deleting an expense reverses its amount from the budget category's spent total.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	transactionID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted successfully"})
}

// GetIncomeTotal godoc
// @Summary Get the income total for a date range
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} IncomeTotalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /transactions/income/total [get]
func (h *TransactionHandler) GetIncomeTotal(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	start, err := parseOptionalDate(c.Query("start"))
	if err != nil || start.IsZero() {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"start must be a date in YYYY-MM-DD format"))
		return
	}
	end, err := parseOptionalDate(c.Query("end"))
	if err != nil || end.IsZero() {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"end must be a date in YYYY-MM-DD format"))
		return
	}

	total, err := h.transactionService.TotalIncome(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, IncomeTotalResponse{
		Total: total,
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	})
}
