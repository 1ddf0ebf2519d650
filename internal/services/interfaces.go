// Package services contains the business logic of the fintrack API.
// Account balances are only ever mutated here, through the account
// service's adjustment and conversion operations.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/pagination"
)

// Requester identifies the authenticated caller of a service operation.
// Admins may read and mutate resources owned by other users.
type Requester struct {
	UserID string
	Role   models.Role
}

// Allows reports whether the requester may access a resource owned by ownerID.
func (r Requester) Allows(ownerID string) bool {
	return r.UserID == ownerID || r.Role == models.RoleAdmin
}

// RateSource supplies currency conversion rates. Implemented by the
// exchange client; stubbed in tests.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(userName, email, password string, role models.Role) (*models.User, error)
	Login(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	// UpdateCurrency changes the user's preferred currency and
	// re-denominates every account the user owns, atomically. Returns
	// the applied conversion rate.
	UpdateCurrency(ctx context.Context, userID, currency string) (*models.User, float64, error)
}

// AccountUpdateFields holds optional account fields for partial updates.
type AccountUpdateFields struct {
	Name        *string
	Group       *models.AccountGroup
	Description *string
}

// AccountServicer defines the contract for account-related business logic.
// AdjustBalance and ConvertAll are the only two balance-writing operations
// in the system.
type AccountServicer interface {
	CreateAccount(userID string, group models.AccountGroup, name, description, baseCurrency string, initialAmount int64) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID, displayCurrency string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(req Requester, accountID string) (*models.Account, error)
	UpdateAccount(req Requester, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(req Requester, accountID string) error
	// AdjustBalance atomically applies amount += delta to one account
	// within the given transaction handle.
	AdjustBalance(tx *gorm.DB, accountID string, delta int64) error
	// ConvertAll re-denominates every account owned by userID at the
	// given rate, all-or-nothing within the given transaction handle.
	ConvertAll(tx *gorm.DB, userID string, rate float64, toCurrency string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, categoryType models.CategoryType, name string) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(req Requester, categoryID string) (*models.Category, error)
	UpdateCategory(req Requester, categoryID, name string) (*models.Category, error)
	DeleteCategory(req Requester, categoryID string) error
}

// EntryInput holds the fields for creating a ledger entry.
type EntryInput struct {
	Date             time.Time
	Amount           int64
	CategoryID       string
	AccountID        string
	Label            string
	Description      string
	IsRecurring      bool
	RecurringPattern models.RecurringPattern
	EndDate          *time.Time
}

// EntryUpdate holds optional fields for partially updating a ledger entry.
type EntryUpdate struct {
	Date             *time.Time
	Amount           *int64
	CategoryID       *string
	AccountID        *string
	Label            *string
	Description      *string
	IsRecurring      *bool
	RecurringPattern *models.RecurringPattern
	EndDate          *time.Time
}

// EntryFilter holds optional filter parameters for listing entries.
type EntryFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *string
	AccountID  *string
}

// EntryServicer defines the contract for the transaction ledger. Every
// entry lifecycle event applies exactly one signed balance adjustment
// (income +, expense -); updates revert the old adjustment and apply a
// fresh one.
type EntryServicer interface {
	// CreateEntry persists the entry and applies its balance adjustment.
	// Expense creations additionally run the budget threshold check and
	// return any resulting notifications.
	CreateEntry(kind models.EntryKind, userID string, input EntryInput) (*models.Entry, []notify.Notification, error)
	// CreateEntryTx is CreateEntry against the caller's database handle,
	// so the entry can commit together with the caller's own writes.
	CreateEntryTx(db *gorm.DB, kind models.EntryKind, userID string, input EntryInput) (*models.Entry, []notify.Notification, error)
	GetUserEntries(kind models.EntryKind, userID string, filter EntryFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error)
	GetEntryByID(req Requester, kind models.EntryKind, entryID string) (*models.Entry, error)
	UpdateEntry(req Requester, kind models.EntryKind, entryID string, update EntryUpdate) (*models.Entry, error)
	DeleteEntry(req Requester, kind models.EntryKind, entryID string) error
}

// TransferInput holds the fields for creating a transfer.
type TransferInput struct {
	Date          time.Time
	Amount        int64
	FromAccountID string
	ToAccountID   string
	Description   string
}

// TransferFilter holds optional filter parameters for listing transfers.
type TransferFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID *string
}

// TransferServicer defines the contract for the transfer engine.
// Transfers are immutable once created; there is no update operation.
type TransferServicer interface {
	CreateTransfer(userID string, input TransferInput) (*models.Transfer, error)
	GetUserTransfers(userID string, filter TransferFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transfer], error)
	GetTransferByID(req Requester, transferID string) (*models.Transfer, error)
	DeleteTransfer(req Requester, transferID string) error
}

// BudgetInput holds the fields for creating a budget.
type BudgetInput struct {
	CategoryID  string
	Amount      int64
	DateFrom    time.Time
	DateTo      time.Time
	Description string
}

// BudgetUpdate holds optional fields for partially updating a budget.
type BudgetUpdate struct {
	Amount      *int64
	DateFrom    *time.Time
	DateTo      *time.Time
	Description *string
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Active     bool
	CategoryID *string
	Date       *time.Time
}

// BudgetStats summarizes consumption of a budget's window.
type BudgetStats struct {
	Spent           int64   `json:"spent"`
	Remaining       int64   `json:"remaining"`
	PercentageSpent float64 `json:"percentage_spent"`
}

// BudgetDetail is a budget with its consumption stats and the expenses
// charged against it.
type BudgetDetail struct {
	Budget   *models.Budget `json:"budget"`
	Stats    BudgetStats    `json:"stats"`
	Expenses []models.Entry `json:"expenses"`
}

// BudgetServicer defines the contract for budget-related business logic.
// Budgets observe the ledger; they never mutate balances.
type BudgetServicer interface {
	CreateBudget(userID string, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, filter BudgetFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetDetail(req Requester, budgetID string) (*BudgetDetail, error)
	UpdateBudget(req Requester, budgetID string, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(req Requester, budgetID string) error
}

// SavingInput holds the fields for creating a savings goal.
type SavingInput struct {
	Name          string
	Amount        int64
	CurrentAmount int64
	TargetDate    time.Time
	Description   string
}

// SavingUpdate holds optional fields for partially updating a savings goal.
type SavingUpdate struct {
	Name        *string
	Amount      *int64
	TargetDate  *time.Time
	Status      *models.SavingStatus
	Description *string
}

// SavingProgress is a savings goal decorated with derived progress fields.
type SavingProgress struct {
	models.Saving
	ProgressPercentage   float64 `json:"progress_percentage"`
	DaysLeft             int     `json:"days_left"`
	AmountNeeded         int64   `json:"amount_needed"`
	DailySavingsRequired int64   `json:"daily_savings_required"`
	IsAchievable         bool    `json:"is_achievable"`
}

// CategoryBreakdown is an aggregated total for one category.
type CategoryBreakdown struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
	Count        int    `json:"count"`
}

// AccountBreakdown is an aggregated total for one account.
type AccountBreakdown struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Total       int64  `json:"total"`
}

// MonthlyPoint is one month's aggregated total, keyed as "2006-01".
type MonthlyPoint struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// BudgetComparison relates a currently active budget to the spending
// charged against it.
type BudgetComparison struct {
	BudgetID        string  `json:"budget_id"`
	CategoryName    string  `json:"category_name"`
	Budgeted        int64   `json:"budgeted"`
	Spent           int64   `json:"spent"`
	PercentageSpent float64 `json:"percentage_spent"`
}

// ExpenseSummary is the per-user expense report.
type ExpenseSummary struct {
	Total        int64               `json:"total"`
	ByCategory   []CategoryBreakdown `json:"by_category"`
	ByAccount    []AccountBreakdown  `json:"by_account"`
	MonthlyTrend []MonthlyPoint      `json:"monthly_trend"`
	Budgets      []BudgetComparison  `json:"budgets"`
}

// IncomeSummary is the per-user income report.
type IncomeSummary struct {
	Total        int64               `json:"total"`
	ByCategory   []CategoryBreakdown `json:"by_category"`
	MonthlyTrend []MonthlyPoint      `json:"monthly_trend"`
}

// UserBreakdown is an aggregated total for one user, used in admin reports.
type UserBreakdown struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// AdminSummary is the cross-user report available to admins.
type AdminSummary struct {
	Total  int64           `json:"total"`
	ByUser []UserBreakdown `json:"by_user"`
}

// ReportServicer defines the contract for read-only reporting projections.
// Reports never mutate balances.
type ReportServicer interface {
	ExpenseSummary(userID string, from, to *time.Time) (*ExpenseSummary, error)
	IncomeSummary(userID string, from, to *time.Time) (*IncomeSummary, error)
	AdminSummary(kind models.EntryKind, from, to *time.Time) (*AdminSummary, error)
}

// SavingServicer defines the contract for savings-goal business logic.
type SavingServicer interface {
	CreateSaving(userID string, input SavingInput) (*models.Saving, error)
	GetUserSavings(userID string, status *models.SavingStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Saving], error)
	GetSavingProgress(req Requester, savingID string) (*SavingProgress, error)
	UpdateSaving(req Requester, savingID string, update SavingUpdate) (*models.Saving, error)
	UpdateSavingProgress(req Requester, savingID string, currentAmount int64) (*models.Saving, error)
	DeleteSaving(req Requester, savingID string) error
}
