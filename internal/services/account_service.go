package services

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// accountService handles account-related business logic. It owns the two
// balance-writing primitives: AdjustBalance and ConvertAll.
type accountService struct {
	db    *gorm.DB
	rates RateSource
}

// NewAccountService creates a new AccountServicer. The rate source is used
// only for best-effort display conversion when listing accounts.
func NewAccountService(db *gorm.DB, rates RateSource) AccountServicer {
	return &accountService{db: db, rates: rates}
}

// CreateAccount creates a new monetary account for a user. An account
// created without an explicit base currency is denominated in the user's
// preferred currency.
func (s *accountService) CreateAccount(userID string, group models.AccountGroup, name, description, baseCurrency string, initialAmount int64) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "account name is required")
	}
	if baseCurrency == "" {
		baseCurrency = s.userCurrency(userID)
	}

	account := &models.Account{
		UserID:       userID,
		Group:        group,
		Name:         name,
		Amount:       initialAmount,
		BaseCurrency: baseCurrency,
		Description:  description,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// userCurrency resolves the user's preferred display currency from the
// stored record, falling back to the default when the user cannot be read.
// Reading it per call, rather than from the token claims, keeps it fresh
// across a currency preference change.
func (s *accountService) userCurrency(userID string) string {
	var user models.User
	if err := s.db.Select("currency").Where("id = ?", userID).First(&user).Error; err != nil {
		return models.DefaultCurrency
	}
	return user.Currency
}

// GetUserAccounts retrieves a paginated list of accounts for a user. When
// displayCurrency differs from an account's base currency, a converted
// amount is attached best-effort: a failed rate lookup leaves the account
// unconverted rather than failing the listing. An empty displayCurrency
// defaults to the user's preferred currency, so listings always read in
// the currency the user thinks in.
func (s *accountService) GetUserAccounts(ctx context.Context, userID, displayCurrency string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	if displayCurrency == "" {
		displayCurrency = s.userCurrency(userID)
	}

	var totalItems int64
	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.attachDisplayAmounts(ctx, accounts, displayCurrency)

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// attachDisplayAmounts decorates accounts whose base currency differs from
// the display currency with a converted amount. Rate failures are logged
// and skipped.
func (s *accountService) attachDisplayAmounts(ctx context.Context, accounts []models.Account, displayCurrency string) {
	if s.rates == nil {
		return
	}
	for i := range accounts {
		if accounts[i].BaseCurrency == displayCurrency {
			continue
		}
		rate, err := s.rates.GetRate(ctx, accounts[i].BaseCurrency, displayCurrency)
		if err != nil {
			logger.Get().Warnw("display conversion skipped",
				"account_id", accounts[i].ID,
				"from", accounts[i].BaseCurrency,
				"to", displayCurrency,
				"error", err.Error(),
			)
			continue
		}
		converted := int64(math.Round(float64(accounts[i].Amount) * rate))
		accounts[i].ConvertedAmount = &converted
		accounts[i].DisplayCurrency = displayCurrency
	}
}

// GetAccountByID retrieves an account by ID. Owners and admins only.
func (s *accountService) GetAccountByID(req Requester, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !req.Allows(account.UserID) {
		return nil, apperrors.ErrForbidden
	}

	return &account, nil
}

// UpdateAccount updates an account's descriptive fields. The balance is
// deliberately not updatable here; it only moves through AdjustBalance
// and ConvertAll.
func (s *accountService) UpdateAccount(req Requester, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(req, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Group != nil {
		updates["group"] = *fields.Group
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount soft-deletes an account.
func (s *accountService) DeleteAccount(req Requester, accountID string) error {
	account, err := s.GetAccountByID(req, accountID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AdjustBalance atomically applies amount += delta to the account. The
// increment happens in SQL, not read-modify-write, so concurrent
// adjustments to the same account serialize in the database.
func (s *accountService) AdjustBalance(tx *gorm.DB, accountID string, delta int64) error {
	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		UpdateColumn("amount", gorm.Expr("amount + ?", delta))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

// ConvertAll re-denominates every account owned by userID: each balance is
// multiplied by rate and rounded to the nearest cent, and the base
// currency is replaced. The caller supplies the transaction handle, making
// the conversion all-or-nothing across accounts.
func (s *accountService) ConvertAll(tx *gorm.DB, userID string, rate float64, toCurrency string) error {
	var accounts []models.Account
	if err := tx.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range accounts {
		converted := int64(math.Round(float64(accounts[i].Amount) * rate))
		if err := tx.Model(&accounts[i]).Updates(map[string]interface{}{
			"amount":        converted,
			"base_currency": toCurrency,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return nil
}
