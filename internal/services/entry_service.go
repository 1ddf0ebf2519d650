package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/pagination"
)

// entryService implements the transaction ledger. Persisting an entry and
// adjusting its account balance are an explicit two-step sequence inside
// one database transaction, never a hidden persistence hook.
type entryService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewEntryService creates a new EntryServicer.
func NewEntryService(db *gorm.DB, accounts AccountServicer) EntryServicer {
	return &entryService{db: db, accounts: accounts}
}

// validateCategory checks that the category exists, belongs to the user,
// and matches the entry kind.
func (s *entryService) validateCategory(db *gorm.DB, userID string, kind models.EntryKind, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if category.Type != models.CategoryTypeFor(kind) {
		return nil, apperrors.ErrCategoryMismatch
	}

	if category.UserID != userID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Not authorized to use this category")
	}

	return &category, nil
}

// CreateEntry validates the category, persists the entry, and applies its
// signed balance adjustment in one database transaction. Expense creations
// additionally run the budget threshold check against the freshly
// aggregated window total.
func (s *entryService) CreateEntry(kind models.EntryKind, userID string, input EntryInput) (*models.Entry, []notify.Notification, error) {
	return s.CreateEntryTx(s.db, kind, userID, input)
}

// CreateEntryTx is CreateEntry running against the caller's database
// handle. Passing an open transaction lets the caller commit the entry
// together with its own writes, the way the scheduler commits an
// occurrence and its anchor advance as one unit.
func (s *entryService) CreateEntryTx(db *gorm.DB, kind models.EntryKind, userID string, input EntryInput) (*models.Entry, []notify.Notification, error) {
	if input.Amount < 1 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
	}
	if input.CategoryID == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "category is required")
	}
	if input.AccountID == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "account is required")
	}
	if input.IsRecurring && input.RecurringPattern == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "recurring entries require a pattern")
	}

	category, err := s.validateCategory(db, userID, kind, input.CategoryID)
	if err != nil {
		return nil, nil, err
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	entry := &models.Entry{
		UserID:           userID,
		Kind:             kind,
		Date:             input.Date,
		Amount:           input.Amount,
		CategoryID:       input.CategoryID,
		AccountID:        input.AccountID,
		Label:            input.Label,
		Description:      input.Description,
		IsRecurring:      input.IsRecurring,
		RecurringPattern: input.RecurringPattern,
		EndDate:          input.EndDate,
	}

	var notifications []notify.Notification
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.accounts.AdjustBalance(tx, entry.AccountID, entry.Delta()); err != nil {
			return err
		}

		if kind == models.EntryKindExpense {
			var txErr error
			notifications, txErr = s.checkBudget(tx, userID, category, entry.Date)
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return entry, notifications, nil
}

// checkBudget looks for a budget covering the expense date and, if one
// exists, routes the window's spending total through the threshold
// monitor. Runs inside the creation transaction so the total includes the
// entry just written.
func (s *entryService) checkBudget(tx *gorm.DB, userID string, category *models.Category, date time.Time) ([]notify.Notification, error) {
	var budget models.Budget
	err := tx.Where("user_id = ? AND category_id = ? AND date_from <= ? AND date_to >= ?",
		userID, category.ID, date, date).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var spent int64
	err = tx.Model(&models.Entry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND kind = ? AND date BETWEEN ? AND ?",
			userID, category.ID, models.EntryKindExpense, budget.DateFrom, budget.DateTo).
		Scan(&spent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return notify.CheckBudgetThresholds(category.Name, spent, budget.Amount, userID), nil
}

// GetUserEntries retrieves a paginated, filtered list of the user's
// entries of one kind, newest first.
func (s *entryService) GetUserEntries(kind models.EntryKind, userID string, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error) {
	page.Defaults()

	base := s.db.Model(&models.Entry{}).Where("user_id = ? AND kind = ?", userID, kind)
	base = applyEntryFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.Entry
	if err := base.Preload("Category").Preload("Account").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyEntryFilters(q *gorm.DB, f EntryFilter) *gorm.DB {
	if f.StartDate != nil {
		q = q.Where("date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("date <= ?", *f.EndDate)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	return q
}

// GetEntryByID retrieves an entry by ID. Owners and admins only.
func (s *entryService) GetEntryByID(req Requester, kind models.EntryKind, entryID string) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.Preload("Category").Preload("Account").
		Where("id = ? AND kind = ?", entryID, kind).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !req.Allows(entry.UserID) {
		return nil, apperrors.ErrForbidden
	}

	return &entry, nil
}

// UpdateEntry applies a partial update. When the amount or account
// changes, the old adjustment is reverted against the old account and a
// fresh adjustment is applied against the (possibly new) account, as two
// balance operations inside one database transaction, never a net diff.
func (s *entryService) UpdateEntry(req Requester, kind models.EntryKind, entryID string, update EntryUpdate) (*models.Entry, error) {
	entry, err := s.GetEntryByID(req, kind, entryID)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil && *update.Amount < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
	}

	if update.CategoryID != nil && *update.CategoryID != entry.CategoryID {
		if _, err := s.validateCategory(s.db, entry.UserID, kind, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	oldDelta := entry.Delta()
	oldAccountID := entry.AccountID

	if update.Date != nil {
		entry.Date = *update.Date
	}
	if update.Amount != nil {
		entry.Amount = *update.Amount
	}
	if update.CategoryID != nil {
		entry.CategoryID = *update.CategoryID
	}
	if update.AccountID != nil {
		entry.AccountID = *update.AccountID
	}
	if update.Label != nil {
		entry.Label = *update.Label
	}
	if update.Description != nil {
		entry.Description = *update.Description
	}
	if update.IsRecurring != nil {
		entry.IsRecurring = *update.IsRecurring
	}
	if update.RecurringPattern != nil {
		entry.RecurringPattern = *update.RecurringPattern
	}
	if update.EndDate != nil {
		entry.EndDate = update.EndDate
	}

	balanceMoved := entry.Delta() != oldDelta || entry.AccountID != oldAccountID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !balanceMoved {
			return nil
		}

		// Revert the old adjustment, then apply the new one.
		if err := s.accounts.AdjustBalance(tx, oldAccountID, -oldDelta); err != nil {
			return err
		}
		return s.accounts.AdjustBalance(tx, entry.AccountID, entry.Delta())
	})
	if err != nil {
		return nil, err
	}

	// Clear stale preloads so the response reflects the updated references.
	entry.Category = models.Category{}
	entry.Account = models.Account{}
	return entry, nil
}

// DeleteEntry reverts the entry's balance adjustment and removes it, as
// one unit.
func (s *entryService) DeleteEntry(req Requester, kind models.EntryKind, entryID string) error {
	entry, err := s.GetEntryByID(req, kind, entryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accounts.AdjustBalance(tx, entry.AccountID, -entry.Delta())
	})
}
