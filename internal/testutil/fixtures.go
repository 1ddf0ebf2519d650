package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		UserName: fmt.Sprintf("user%d", nextID()),
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		Currency: models.DefaultCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates a user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUserWithEmail(t, db, fmt.Sprintf("admin%d@finance.admin.io", nextID()))
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestAccount creates a cash account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, 0)
}

// CreateTestAccountWithBalance creates a cash account with the given balance (in cents).
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:       userID,
		Group:        models.AccountGroupCash,
		Name:         fmt.Sprintf("Test Account %d", nextID()),
		Amount:       balance,
		BaseCurrency: models.DefaultCurrency,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Type:   categoryType,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestEntry creates an entry of the given kind, without applying any
// balance adjustment. Use the entry service when the adjustment matters.
func CreateTestEntry(t *testing.T, db *gorm.DB, userID string, kind models.EntryKind, accountID, categoryID string, amount int64, date time.Time) *models.Entry {
	t.Helper()

	entry := &models.Entry{
		UserID:     userID,
		Kind:       kind,
		Date:       date,
		Amount:     amount,
		CategoryID: categoryID,
		AccountID:  accountID,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// CreateTestBudget creates a budget over the given window.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64, dateFrom, dateTo time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestSaving creates an in-progress savings goal.
func CreateTestSaving(t *testing.T, db *gorm.DB, userID string, target, current int64, targetDate time.Time) *models.Saving {
	t.Helper()

	saving := &models.Saving{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		Amount:        target,
		CurrentAmount: current,
		TargetDate:    targetDate,
		Status:        models.SavingStatusInProgress,
	}
	if err := db.Create(saving).Error; err != nil {
		t.Fatalf("failed to create test saving: %v", err)
	}
	return saving
}
