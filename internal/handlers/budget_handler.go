package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the request payload for creating a budget
type CreateBudgetRequest struct {
	CategoryID  string `json:"category_id" binding:"required,uuid"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	DateFrom    string `json:"date_from" binding:"required"`
	DateTo      string `json:"date_to" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateBudgetRequest represents the request payload for updating a budget
type UpdateBudgetRequest struct {
	Amount      *int64  `json:"amount" binding:"omitempty,gt=0"`
	DateFrom    *string `json:"date_from"`
	DateTo      *string `json:"date_to"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CreateBudget handles the creation of a new budget
// @Summary     Create a budget
// @Description Create a spending cap for an expense category over a date window. Windows for the same category must not overlap.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Overlapping budget"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	dateFrom, err := parseFlexibleTime(req.DateFrom)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date_from format, use RFC3339 or YYYY-MM-DD"))
		return
	}
	dateTo, err := parseFlexibleTime(req.DateTo)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date_to format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, services.BudgetInput{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets lists the authenticated user's budgets
// @Summary     List budgets
// @Description Get a paginated list of budgets with optional active, category and date filters
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       active      query bool   false "Only budgets whose window covers today"
// @Param       category_id query string false "Category filter"
// @Param       date        query string false "Only budgets whose window covers this date"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Budgets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	var filter services.BudgetFilter
	filter.Active = c.Query("active") == "true"
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if filter.Date, err = parseDateQuery(c, "date"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget retrieves one budget with its consumption stats
// @Summary     Get budget detail
// @Description Get a budget with spent, remaining and percentage stats plus the expenses charged against it
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.BudgetDetail "Budget detail"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.budgetService.GetBudgetDetail(req, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateBudget applies a partial update to a budget
// @Summary     Update a budget
// @Description Update a budget's amount, window or description. Moving the window re-checks overlap.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Overlapping budget"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body UpdateBudgetRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	update := services.BudgetUpdate{
		Amount:      body.Amount,
		Description: body.Description,
	}
	if body.DateFrom != nil {
		parsed, parseErr := parseFlexibleTime(*body.DateFrom)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date_from format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.DateFrom = &parsed
	}
	if body.DateTo != nil {
		parsed, parseErr := parseFlexibleTime(*body.DateTo)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date_to format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.DateTo = &parsed
	}

	budget, err := h.budgetService.UpdateBudget(req, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget deletes a budget
// @Summary     Delete a budget
// @Description Delete a budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(req, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
