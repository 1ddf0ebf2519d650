package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// savingService handles savings-goal business logic. Goals are tracked
// separately from accounts and never touch balances.
type savingService struct {
	db *gorm.DB
}

// NewSavingService creates a new SavingServicer.
func NewSavingService(db *gorm.DB) SavingServicer {
	return &savingService{db: db}
}

// CreateSaving creates a savings goal. New goals start In Progress unless
// the initial amount already meets the target.
func (s *savingService) CreateSaving(userID string, input SavingInput) (*models.Saving, error) {
	if input.Amount < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
	}
	if input.CurrentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "current_amount must not be negative")
	}

	saving := &models.Saving{
		UserID:        userID,
		Name:          input.Name,
		Amount:        input.Amount,
		CurrentAmount: input.CurrentAmount,
		TargetDate:    input.TargetDate,
		Status:        models.SavingStatusInProgress,
		Description:   input.Description,
	}
	if saving.CurrentAmount >= saving.Amount {
		saving.Status = models.SavingStatusCompleted
	}

	if err := s.db.Create(saving).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return saving, nil
}

// GetUserSavings returns a paginated list of the user's savings goals,
// optionally filtered by status, nearest target date first.
func (s *savingService) GetUserSavings(userID string, status *models.SavingStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Saving], error) {
	page.Defaults()

	base := s.db.Model(&models.Saving{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var savings []models.Saving
	if err := base.Scopes(pagination.Paginate(page)).
		Order("target_date ASC").
		Find(&savings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(savings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *savingService) getSavingByID(req Requester, savingID string) (*models.Saving, error) {
	var saving models.Saving
	if err := s.db.Where("id = ?", savingID).First(&saving).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !req.Allows(saving.UserID) {
		return nil, apperrors.ErrForbidden
	}

	return &saving, nil
}

// GetSavingProgress returns a goal decorated with derived progress fields.
// DailySavingsRequired spreads the remaining amount over the days left;
// a goal with a past target date and an outstanding amount is unachievable.
func (s *savingService) GetSavingProgress(req Requester, savingID string) (*SavingProgress, error) {
	saving, err := s.getSavingByID(req, savingID)
	if err != nil {
		return nil, err
	}

	progress := &SavingProgress{Saving: *saving}

	if saving.Amount > 0 {
		progress.ProgressPercentage = float64(saving.CurrentAmount) / float64(saving.Amount) * 100
	}

	if remaining := saving.Amount - saving.CurrentAmount; remaining > 0 {
		progress.AmountNeeded = remaining
	}

	daysLeft := int(math.Ceil(time.Until(saving.TargetDate).Hours() / 24))
	if daysLeft > 0 {
		progress.DaysLeft = daysLeft
	}

	switch {
	case progress.AmountNeeded == 0:
		progress.IsAchievable = true
	case progress.DaysLeft > 0:
		progress.DailySavingsRequired = int64(math.Ceil(float64(progress.AmountNeeded) / float64(progress.DaysLeft)))
		progress.IsAchievable = true
	default:
		progress.IsAchievable = false
	}

	return progress, nil
}

// UpdateSaving applies a partial update to a goal's metadata and status.
func (s *savingService) UpdateSaving(req Requester, savingID string, update SavingUpdate) (*models.Saving, error) {
	saving, err := s.getSavingByID(req, savingID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		saving.Name = *update.Name
	}
	if update.Amount != nil {
		if *update.Amount < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
		}
		saving.Amount = *update.Amount
	}
	if update.TargetDate != nil {
		saving.TargetDate = *update.TargetDate
	}
	if update.Status != nil {
		saving.Status = *update.Status
	}
	if update.Description != nil {
		saving.Description = *update.Description
	}

	// Raising the target can reopen a completed goal unless the caller
	// set the status explicitly.
	if update.Status == nil {
		saving.Status = reconcileSavingStatus(saving)
	}

	if err := s.db.Save(saving).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return saving, nil
}

// UpdateSavingProgress sets the accumulated amount and reconciles the
// status: reaching the target completes the goal, dropping back below it
// reopens a completed one. Abandoned goals keep their status.
func (s *savingService) UpdateSavingProgress(req Requester, savingID string, currentAmount int64) (*models.Saving, error) {
	if currentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "current_amount must not be negative")
	}

	saving, err := s.getSavingByID(req, savingID)
	if err != nil {
		return nil, err
	}

	saving.CurrentAmount = currentAmount
	saving.Status = reconcileSavingStatus(saving)

	if err := s.db.Save(saving).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return saving, nil
}

func reconcileSavingStatus(saving *models.Saving) models.SavingStatus {
	if saving.Status == models.SavingStatusAbandoned {
		return saving.Status
	}
	if saving.CurrentAmount >= saving.Amount {
		return models.SavingStatusCompleted
	}
	return models.SavingStatusInProgress
}

// DeleteSaving soft-deletes a savings goal.
func (s *savingService) DeleteSaving(req Requester, savingID string) error {
	saving, err := s.getSavingByID(req, savingID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(saving).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
