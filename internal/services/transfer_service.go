package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transferService implements the transfer engine: an atomic two-account
// balance move. Both legs apply inside one database transaction so no
// other transaction ever observes one leg without the other.
type transferService struct {
	db       *gorm.DB
	accounts AccountServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, accounts AccountServicer) TransferServicer {
	return &transferService{db: db, accounts: accounts}
}

// CreateTransfer validates both accounts, persists the transfer, and moves
// the balance. The source decrement is conditional on sufficient funds at
// commit time, so a concurrent spend between the pre-check and the write
// fails the transfer instead of overdrawing the account.
func (s *transferService) CreateTransfer(userID string, input TransferInput) (*models.Transfer, error) {
	if input.Amount < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrValidationFailed, "amount must be at least 0.01")
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, apperrors.ErrInvalidTransfer
	}

	var from, to models.Account
	if err := s.db.Where("id = ?", input.FromAccountID).First(&from).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrAccountNotFound, "Source account not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ?", input.ToAccountID).First(&to).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrAccountNotFound, "Destination account not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if from.UserID != userID || to.UserID != userID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Not authorized to use these accounts")
	}

	if from.Amount < input.Amount {
		return nil, apperrors.ErrInsufficientFunds
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	transfer := &models.Transfer{
		UserID:        userID,
		Date:          input.Date,
		Amount:        input.Amount,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		Description:   input.Description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transfer).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Conditional decrement: re-checks funds at commit time.
		res := tx.Model(&models.Account{}).
			Where("id = ? AND amount >= ?", transfer.FromAccountID, transfer.Amount).
			UpdateColumn("amount", gorm.Expr("amount - ?", transfer.Amount))
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInsufficientFunds
		}

		return s.accounts.AdjustBalance(tx, transfer.ToAccountID, transfer.Amount)
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetUserTransfers retrieves a paginated, filtered list of the user's
// transfers, newest first. The account filter matches either leg.
func (s *transferService) GetUserTransfers(userID string, filter TransferFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transfer], error) {
	page.Defaults()

	base := s.db.Model(&models.Transfer{}).Where("user_id = ?", userID)
	if filter.StartDate != nil {
		base = base.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("date <= ?", *filter.EndDate)
	}
	if filter.AccountID != nil {
		base = base.Where("from_account_id = ? OR to_account_id = ?", *filter.AccountID, *filter.AccountID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transfers []models.Transfer
	if err := base.Preload("FromAccount").Preload("ToAccount").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transfers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transfers, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransferByID retrieves a transfer by ID. Owners and admins only.
func (s *transferService) GetTransferByID(req Requester, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := s.db.Preload("FromAccount").Preload("ToAccount").
		Where("id = ?", transferID).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransferNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !req.Allows(transfer.UserID) {
		return nil, apperrors.ErrForbidden
	}

	return &transfer, nil
}

// DeleteTransfer reverses both legs and removes the record as one unit.
func (s *transferService) DeleteTransfer(req Requester, transferID string) error {
	transfer, err := s.GetTransferByID(req, transferID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transfer).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.accounts.AdjustBalance(tx, transfer.FromAccountID, transfer.Amount); err != nil {
			return err
		}
		return s.accounts.AdjustBalance(tx, transfer.ToAccountID, -transfer.Amount)
	})
}
