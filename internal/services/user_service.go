package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// adminEmailDomain is the mail domain required for admin registrations.
const adminEmailDomain = "@finance.admin.io"

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	rates    RateSource
	accounts AccountServicer
}

// NewUserService creates a new UserServicer. The account service is needed
// for re-denominating balances on currency changes.
func NewUserService(db *gorm.DB, rates RateSource, accounts AccountServicer) UserServicer {
	return &userService{db: db, rates: rates, accounts: accounts}
}

// Register creates a new user with a bcrypt-hashed password. Admin
// registrations are restricted to the finance admin mail domain.
func (s *userService) Register(userName, email, password string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if role == models.RoleAdmin && !strings.HasSuffix(email, adminEmailDomain) {
		return nil, apperrors.ErrNotAdminEmail
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		UserName: userName,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Currency: models.DefaultCurrency,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// Login verifies the credentials and returns the user. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *userService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateCurrency switches the user's preferred currency and re-denominates
// all of the user's accounts at the current rate. The rate is fetched
// before the transaction opens; a rate failure aborts the whole change.
func (s *userService) UpdateCurrency(ctx context.Context, userID, currency string) (*models.User, float64, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, 0, err
	}

	if user.Currency == currency {
		return nil, 0, apperrors.ErrSameCurrency
	}

	rate, err := s.rates.GetRate(ctx, user.Currency, currency)
	if err != nil {
		return nil, 0, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accounts.ConvertAll(tx, userID, rate, currency); err != nil {
			return err
		}
		return tx.Model(user).Update("currency", currency).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, 0, err
		}
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user.Currency = currency
	return user, rate, nil
}
