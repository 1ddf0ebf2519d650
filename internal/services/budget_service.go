package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetService handles budget-related business logic. Budgets only
// observe the ledger; they never touch account balances.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for an expense category. For a given
// (user, category), budget windows must not overlap.
func (s *budgetService) CreateBudget(userID string, input BudgetInput) (*models.Budget, error) {
	if input.Amount < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
	}
	if input.DateTo.Before(input.DateFrom) {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "date_to must not precede date_from")
	}

	var category models.Category
	if err := s.db.Where("id = ?", input.CategoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Type != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrCategoryMismatch, "Budgets can only be set for expense categories")
	}
	if category.UserID != userID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Not authorized to use this category")
	}

	if err := s.ensureNoOverlap(userID, input.CategoryID, input.DateFrom, input.DateTo, ""); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		DateFrom:    input.DateFrom,
		DateTo:      input.DateTo,
		Description: input.Description,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// ensureNoOverlap fails with OverlappingBudget when another budget for the
// same (user, category) intersects [dateFrom, dateTo]. excludeID skips the
// budget being updated.
func (s *budgetService) ensureNoOverlap(userID, categoryID string, dateFrom, dateTo time.Time, excludeID string) error {
	q := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND date_from <= ? AND date_to >= ?",
			userID, categoryID, dateTo, dateFrom)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrOverlappingBudget
	}
	return nil
}

// GetUserBudgets returns a paginated list of the user's budgets with
// optional filters, earliest window first.
func (s *budgetService) GetUserBudgets(userID string, filter BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Date != nil {
		base = base.Where("date_from <= ? AND date_to >= ?", *filter.Date, *filter.Date)
	}
	if filter.Active {
		now := time.Now()
		base = base.Where("date_from <= ? AND date_to >= ?", now, now)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date_from ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getBudgetByID retrieves a budget by ID. Owners and admins only.
func (s *budgetService) getBudgetByID(req Requester, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !req.Allows(budget.UserID) {
		return nil, apperrors.ErrForbidden
	}

	return &budget, nil
}

// GetBudgetDetail returns a budget with its consumption stats and the
// expense entries charged against its window.
func (s *budgetService) GetBudgetDetail(req Requester, budgetID string) (*BudgetDetail, error) {
	budget, err := s.getBudgetByID(req, budgetID)
	if err != nil {
		return nil, err
	}

	var expenses []models.Entry
	if err := s.db.Where("user_id = ? AND category_id = ? AND kind = ? AND date BETWEEN ? AND ?",
		budget.UserID, budget.CategoryID, models.EntryKindExpense, budget.DateFrom, budget.DateTo).
		Order("date DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var spent int64
	for i := range expenses {
		spent += expenses[i].Amount
	}

	var percentage float64
	if budget.Amount > 0 {
		percentage = float64(spent) / float64(budget.Amount) * 100
	}

	return &BudgetDetail{
		Budget: budget,
		Stats: BudgetStats{
			Spent:           spent,
			Remaining:       budget.Amount - spent,
			PercentageSpent: percentage,
		},
		Expenses: expenses,
	}, nil
}

// UpdateBudget applies a partial update, re-checking window overlap when
// the window moves.
func (s *budgetService) UpdateBudget(req Requester, budgetID string, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.getBudgetByID(req, budgetID)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil {
		if *update.Amount < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
		}
		budget.Amount = *update.Amount
	}
	windowMoved := false
	if update.DateFrom != nil {
		budget.DateFrom = *update.DateFrom
		windowMoved = true
	}
	if update.DateTo != nil {
		budget.DateTo = *update.DateTo
		windowMoved = true
	}
	if update.Description != nil {
		budget.Description = *update.Description
	}

	if budget.DateTo.Before(budget.DateFrom) {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "date_to must not precede date_from")
	}

	if windowMoved {
		if err := s.ensureNoOverlap(budget.UserID, budget.CategoryID, budget.DateFrom, budget.DateTo, budget.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(req Requester, budgetID string) error {
	budget, err := s.getBudgetByID(req, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
