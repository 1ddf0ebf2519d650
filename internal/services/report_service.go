package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// trendMonths is the length of the monthly trend window in reports.
const trendMonths = 6

// reportService builds read-only aggregations over the ledger.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// ExpenseSummary aggregates the user's expenses in [from, to], with
// category and account breakdowns, a six-month trend and a comparison
// against currently active budgets.
func (s *reportService) ExpenseSummary(userID string, from, to *time.Time) (*ExpenseSummary, error) {
	summary := &ExpenseSummary{
		ByCategory:   []CategoryBreakdown{},
		ByAccount:    []AccountBreakdown{},
		MonthlyTrend: []MonthlyPoint{},
		Budgets:      []BudgetComparison{},
	}

	total, err := s.entryTotal(userID, models.EntryKindExpense, from, to)
	if err != nil {
		return nil, err
	}
	summary.Total = total

	if summary.ByCategory, err = s.categoryBreakdown(userID, models.EntryKindExpense, from, to); err != nil {
		return nil, err
	}
	if summary.ByAccount, err = s.accountBreakdown(userID, from, to); err != nil {
		return nil, err
	}
	if summary.MonthlyTrend, err = s.monthlyTrend(userID, models.EntryKindExpense); err != nil {
		return nil, err
	}
	if summary.Budgets, err = s.budgetComparison(userID); err != nil {
		return nil, err
	}

	return summary, nil
}

// IncomeSummary aggregates the user's incomes in [from, to], with a
// category breakdown and a six-month trend.
func (s *reportService) IncomeSummary(userID string, from, to *time.Time) (*IncomeSummary, error) {
	summary := &IncomeSummary{
		ByCategory:   []CategoryBreakdown{},
		MonthlyTrend: []MonthlyPoint{},
	}

	total, err := s.entryTotal(userID, models.EntryKindIncome, from, to)
	if err != nil {
		return nil, err
	}
	summary.Total = total

	if summary.ByCategory, err = s.categoryBreakdown(userID, models.EntryKindIncome, from, to); err != nil {
		return nil, err
	}
	if summary.MonthlyTrend, err = s.monthlyTrend(userID, models.EntryKindIncome); err != nil {
		return nil, err
	}

	return summary, nil
}

// AdminSummary aggregates entries of one kind across all users.
func (s *reportService) AdminSummary(kind models.EntryKind, from, to *time.Time) (*AdminSummary, error) {
	summary := &AdminSummary{ByUser: []UserBreakdown{}}

	q := s.db.Model(&models.Entry{}).
		Select("entries.user_id AS user_id, users.user_name AS user_name, COALESCE(SUM(entries.amount), 0) AS total, COUNT(entries.id) AS count").
		Joins("JOIN users ON users.id = entries.user_id").
		Where("entries.kind = ?", kind).
		Group("entries.user_id, users.user_name").
		Order("total DESC")
	q = scopeEntryDates(q, "entries.date", from, to)

	if err := q.Scan(&summary.ByUser).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range summary.ByUser {
		summary.Total += summary.ByUser[i].Total
	}

	return summary, nil
}

func scopeEntryDates(q *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q = q.Where(column+" <= ?", *to)
	}
	return q
}

func (s *reportService) entryTotal(userID string, kind models.EntryKind, from, to *time.Time) (int64, error) {
	var total int64
	q := s.db.Model(&models.Entry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND kind = ?", userID, kind)
	q = scopeEntryDates(q, "date", from, to)

	if err := q.Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

func (s *reportService) categoryBreakdown(userID string, kind models.EntryKind, from, to *time.Time) ([]CategoryBreakdown, error) {
	rows := []CategoryBreakdown{}
	q := s.db.Model(&models.Entry{}).
		Select("entries.category_id AS category_id, categories.name AS category_name, COALESCE(SUM(entries.amount), 0) AS total, COUNT(entries.id) AS count").
		Joins("JOIN categories ON categories.id = entries.category_id").
		Where("entries.user_id = ? AND entries.kind = ?", userID, kind).
		Group("entries.category_id, categories.name").
		Order("total DESC")
	q = scopeEntryDates(q, "entries.date", from, to)

	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *reportService) accountBreakdown(userID string, from, to *time.Time) ([]AccountBreakdown, error) {
	rows := []AccountBreakdown{}
	q := s.db.Model(&models.Entry{}).
		Select("entries.account_id AS account_id, accounts.name AS account_name, COALESCE(SUM(entries.amount), 0) AS total").
		Joins("JOIN accounts ON accounts.id = entries.account_id").
		Where("entries.user_id = ? AND entries.kind = ?", userID, models.EntryKindExpense).
		Group("entries.account_id, accounts.name").
		Order("total DESC")
	q = scopeEntryDates(q, "entries.date", from, to)

	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// monthlyTrend buckets the last six months of entries by calendar month.
// Bucketing happens here rather than in SQL so the query stays portable
// across the postgres and sqlite dialects.
func (s *reportService) monthlyTrend(userID string, kind models.EntryKind) ([]MonthlyPoint, error) {
	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	var entries []models.Entry
	if err := s.db.Select("date", "amount").
		Where("user_id = ? AND kind = ? AND date >= ?", userID, kind, windowStart).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	buckets := make(map[string]int64, trendMonths)
	for i := 0; i < trendMonths; i++ {
		buckets[windowStart.AddDate(0, i, 0).Format("2006-01")] = 0
	}
	for i := range entries {
		key := entries[i].Date.Format("2006-01")
		if _, ok := buckets[key]; ok {
			buckets[key] += entries[i].Amount
		}
	}

	trend := make([]MonthlyPoint, 0, len(buckets))
	for month, total := range buckets {
		trend = append(trend, MonthlyPoint{Month: month, Total: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })

	return trend, nil
}

// budgetComparison relates each currently active budget to the spending
// inside its window.
func (s *reportService) budgetComparison(userID string) ([]BudgetComparison, error) {
	now := time.Now()

	var budgets []models.Budget
	if err := s.db.Preload("Category").
		Where("user_id = ? AND date_from <= ? AND date_to >= ?", userID, now, now).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows := make([]BudgetComparison, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]

		var spent int64
		if err := s.db.Model(&models.Entry{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND category_id = ? AND kind = ? AND date BETWEEN ? AND ?",
				userID, b.CategoryID, models.EntryKindExpense, b.DateFrom, b.DateTo).
			Scan(&spent).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		row := BudgetComparison{
			BudgetID:     b.ID,
			CategoryName: b.Category.Name,
			Budgeted:     b.Amount,
			Spent:        spent,
		}
		if b.Amount > 0 {
			row.PercentageSpent = float64(spent) / float64(b.Amount) * 100
		}
		rows = append(rows, row)
	}

	return rows, nil
}
