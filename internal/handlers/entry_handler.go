package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// EntryHandler serves the ledger endpoints for one entry kind. The income
// and expense route groups each get their own instance.
type EntryHandler struct {
	kind          models.EntryKind
	entryService  services.EntryServicer
	reportService services.ReportServicer
}

// NewEntryHandler creates an EntryHandler bound to a kind.
func NewEntryHandler(kind models.EntryKind, entryService services.EntryServicer, reportService services.ReportServicer) *EntryHandler {
	return &EntryHandler{kind: kind, entryService: entryService, reportService: reportService}
}

// CreateEntryRequest represents the request payload for creating a ledger entry
type CreateEntryRequest struct {
	Date             *string `json:"date"`
	Amount           int64   `json:"amount" binding:"required,gt=0"`
	CategoryID       string  `json:"category_id" binding:"required,uuid"`
	AccountID        string  `json:"account_id" binding:"required,uuid"`
	Label            string  `json:"label" binding:"max=100"`
	Description      string  `json:"description" binding:"max=500"`
	IsRecurring      bool    `json:"is_recurring"`
	RecurringPattern string  `json:"recurring_pattern" binding:"omitempty,recurring_pattern"`
	EndDate          *string `json:"end_date"`
}

// UpdateEntryRequest represents the request payload for updating a ledger entry
type UpdateEntryRequest struct {
	Date             *string `json:"date"`
	Amount           *int64  `json:"amount" binding:"omitempty,gt=0"`
	CategoryID       *string `json:"category_id" binding:"omitempty,uuid"`
	AccountID        *string `json:"account_id" binding:"omitempty,uuid"`
	Label            *string `json:"label" binding:"omitempty,max=100"`
	Description      *string `json:"description" binding:"omitempty,max=500"`
	IsRecurring      *bool   `json:"is_recurring"`
	RecurringPattern *string `json:"recurring_pattern" binding:"omitempty,recurring_pattern"`
	EndDate          *string `json:"end_date"`
}

// CreateEntry handles the creation of a new ledger entry
// @Summary     Create a ledger entry
// @Description Create an income or expense entry. The account balance is adjusted atomically; expense creations also return any budget notifications.
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateEntryRequest true "Entry details"
// @Success     201 {object} models.Entry "Entry created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /{kind} [post]
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	input := services.EntryInput{
		Amount:           req.Amount,
		CategoryID:       req.CategoryID,
		AccountID:        req.AccountID,
		Label:            req.Label,
		Description:      req.Description,
		IsRecurring:      req.IsRecurring,
		RecurringPattern: models.RecurringPattern(req.RecurringPattern),
	}

	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.Date = parsed
	}
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid end_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.EndDate = &parsed
	}

	entry, notifications, err := h.entryService.CreateEntry(h.kind, userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	body := gin.H{"entry": entry}
	if len(notifications) > 0 {
		body["notifications"] = notifications
	}
	c.JSON(http.StatusCreated, body)
}

// GetEntries lists the authenticated user's entries of this kind
// @Summary     List ledger entries
// @Description Get a paginated list of entries, newest first, with optional date, category and account filters
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       from_date   query string false "Inclusive start date"
// @Param       to_date     query string false "Inclusive end date"
// @Param       category_id query string false "Category filter"
// @Param       account_id  query string false "Account filter"
// @Success     200 {object} pagination.PageResponse[models.Entry] "Entries"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /{kind} [get]
func (h *EntryHandler) GetEntries(c *gin.Context) {
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

	filter, err := parseEntryFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.entryService.GetUserEntries(h.kind, userID, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseEntryFilter(c *gin.Context) (services.EntryFilter, error) {
	var filter services.EntryFilter
	var err error

	if filter.StartDate, err = parseDateQuery(c, "from_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDateQuery(c, "to_date"); err != nil {
		return filter, err
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("account_id"); v != "" {
		filter.AccountID = &v
	}

	return filter, nil
}

// GetEntry retrieves one entry
// @Summary     Get a ledger entry
// @Description Get a single entry by ID
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} models.Entry "Entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /{kind}/{id} [get]
func (h *EntryHandler) GetEntry(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.entryService.GetEntryByID(req, h.kind, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// UpdateEntry applies a partial update to an entry
// @Summary     Update a ledger entry
// @Description Update an entry. The old balance adjustment is reverted and a fresh one applied atomically.
// @Tags        entries
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Entry ID"
// @Param       request body UpdateEntryRequest true "Fields to update"
// @Success     200 {object} models.Entry "Entry updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /{kind}/{id} [put]
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body UpdateEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	update := services.EntryUpdate{
		Amount:      body.Amount,
		CategoryID:  body.CategoryID,
		AccountID:   body.AccountID,
		Label:       body.Label,
		Description: body.Description,
		IsRecurring: body.IsRecurring,
	}

	if body.Date != nil && *body.Date != "" {
		parsed, parseErr := parseFlexibleTime(*body.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.Date = &parsed
	}
	if body.RecurringPattern != nil {
		pattern := models.RecurringPattern(*body.RecurringPattern)
		update.RecurringPattern = &pattern
	}
	if body.EndDate != nil && *body.EndDate != "" {
		parsed, parseErr := parseFlexibleTime(*body.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid end_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.EndDate = &parsed
	}

	entry, err := h.entryService.UpdateEntry(req, h.kind, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry deletes an entry
// @Summary     Delete a ledger entry
// @Description Delete an entry by ID, reverting its balance adjustment
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Entry ID"
// @Success     200 {object} map[string]string "Entry deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Entry not found"
// @Router      /{kind}/{id} [delete]
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.entryService.DeleteEntry(req, h.kind, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}

// GetSummary returns the aggregated report for this entry kind
// @Summary     Entry summary report
// @Description Get the aggregated summary for this kind: totals, breakdowns, monthly trend and, for expenses, budget comparison
// @Tags        entries
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "Inclusive start date"
// @Param       to_date   query string false "Inclusive end date"
// @Success     200 {object} services.ExpenseSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /{kind}/summary [get]
func (h *EntryHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var from, to *time.Time
	if from, err = parseDateQuery(c, "from_date"); err != nil {
		respondWithError(c, err)
		return
	}
	if to, err = parseDateQuery(c, "to_date"); err != nil {
		respondWithError(c, err)
		return
	}

	if h.kind == models.EntryKindExpense {
		summary, err := h.reportService.ExpenseSummary(userID, from, to)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
		return
	}

	summary, err := h.reportService.IncomeSummary(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
