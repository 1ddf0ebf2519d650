package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// SavingHandler handles savings-goal requests.
type SavingHandler struct {
	savingService services.SavingServicer
}

// NewSavingHandler creates a new SavingHandler.
func NewSavingHandler(savingService services.SavingServicer) *SavingHandler {
	return &SavingHandler{savingService: savingService}
}

// CreateSavingRequest represents the request payload for creating a savings goal
type CreateSavingRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	CurrentAmount int64  `json:"current_amount" binding:"omitempty,min=0"`
	TargetDate    string `json:"target_date" binding:"required"`
	Description   string `json:"description" binding:"max=500"`
}

// UpdateSavingRequest represents the request payload for updating a savings goal
type UpdateSavingRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Amount      *int64  `json:"amount" binding:"omitempty,gt=0"`
	TargetDate  *string `json:"target_date"`
	Status      *string `json:"status" binding:"omitempty,saving_status"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// UpdateProgressRequest represents the request payload for updating progress
type UpdateProgressRequest struct {
	CurrentAmount *int64 `json:"current_amount" binding:"required,min=0"`
}

// CreateSaving handles the creation of a new savings goal
// @Summary     Create a savings goal
// @Description Create a savings goal with a target amount and date
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSavingRequest true "Goal details"
// @Success     201 {object} models.Saving "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /savings [post]
func (h *SavingHandler) CreateSaving(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	targetDate, err := parseFlexibleTime(req.TargetDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid target_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	saving, err := h.savingService.CreateSaving(userID, services.SavingInput{
		Name:          req.Name,
		Amount:        req.Amount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    targetDate,
		Description:   req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"saving": saving})
}

// GetSavings lists the authenticated user's savings goals
// @Summary     List savings goals
// @Description Get a paginated list of savings goals, optionally filtered by status
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       status    query string false "Status filter (In Progress, Completed, Abandoned)"
// @Success     200 {object} pagination.PageResponse[models.Saving] "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /savings [get]
func (h *SavingHandler) GetSavings(c *gin.Context) {
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

	var status *models.SavingStatus
	if v := c.Query("status"); v != "" {
		s := models.SavingStatus(v)
		switch s {
		case models.SavingStatusInProgress, models.SavingStatusCompleted, models.SavingStatusAbandoned:
			status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid status filter"))
			return
		}
	}

	result, err := h.savingService.GetUserSavings(userID, status, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSaving retrieves one goal with derived progress fields
// @Summary     Get savings goal progress
// @Description Get a savings goal with progress percentage, days left, amount needed, required daily savings and achievability
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.SavingProgress "Goal progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings/{id} [get]
func (h *SavingHandler) GetSaving(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.savingService.GetSavingProgress(req, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saving": progress})
}

// UpdateSaving applies a partial update to a savings goal
// @Summary     Update a savings goal
// @Description Update a goal's name, target, date, status or description
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Goal ID"
// @Param       request body UpdateSavingRequest true "Fields to update"
// @Success     200 {object} models.Saving "Goal updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings/{id} [put]
func (h *SavingHandler) UpdateSaving(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body UpdateSavingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	update := services.SavingUpdate{
		Name:        body.Name,
		Amount:      body.Amount,
		Description: body.Description,
	}
	if body.TargetDate != nil {
		parsed, parseErr := parseFlexibleTime(*body.TargetDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, "invalid target_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.TargetDate = &parsed
	}
	if body.Status != nil {
		status := models.SavingStatus(*body.Status)
		update.Status = &status
	}

	saving, err := h.savingService.UpdateSaving(req, c.Param("id"), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saving": saving})
}

// UpdateProgress sets the accumulated amount on a goal
// @Summary     Update savings progress
// @Description Set the accumulated amount. Reaching the target completes the goal; dropping back below reopens it.
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Goal ID"
// @Param       request body UpdateProgressRequest true "Accumulated amount"
// @Success     200 {object} models.Saving "Progress updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings/{id}/progress [put]
func (h *SavingHandler) UpdateProgress(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var body UpdateProgressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidationFailed, err.Error()))
		return
	}

	saving, err := h.savingService.UpdateSavingProgress(req, c.Param("id"), *body.CurrentAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"saving": saving})
}

// DeleteSaving deletes a savings goal
// @Summary     Delete a savings goal
// @Description Delete a savings goal by ID
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} map[string]string "Goal deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /savings/{id} [delete]
func (h *SavingHandler) DeleteSaving(c *gin.Context) {
	req, err := getRequester(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingService.DeleteSaving(req, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Saving deleted successfully"})
}
