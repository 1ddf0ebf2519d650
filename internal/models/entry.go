package models

import "time"

// EntryKind distinguishes income from expense records. The two share a
// shape and differ only in the sign of their balance adjustment.
type EntryKind string

const (
	EntryKindIncome  EntryKind = "income"
	EntryKindExpense EntryKind = "expense"
)

// RecurringPattern is the fixed schedule governing automatic
// regeneration of a recurring entry.
type RecurringPattern string

const (
	RecurringDaily   RecurringPattern = "daily"
	RecurringWeekly  RecurringPattern = "weekly"
	RecurringMonthly RecurringPattern = "monthly"
)

// Entry is a ledger entry: a single income or expense record with exactly
// one signed effect on one account's balance. Amount is positive cents;
// the kind decides the adjustment sign (income +, expense -).
type Entry struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind        EntryKind `gorm:"not null;index" json:"kind"`
	Date        time.Time `gorm:"not null" json:"date"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	CategoryID  string    `gorm:"type:uuid;not null;index" json:"category_id"`
	AccountID   string    `gorm:"type:uuid;not null;index" json:"account_id"`
	Label       string    `json:"label,omitempty"`
	Description string    `gorm:"size:500" json:"description,omitempty"`

	IsRecurring      bool             `gorm:"default:false" json:"is_recurring"`
	RecurringPattern RecurringPattern `json:"recurring_pattern,omitempty"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
	// LastRecurredAt records when the scheduler last materialized an
	// occurrence from this entry. Nil until the first occurrence.
	LastRecurredAt *time.Time `json:"last_recurred_at,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Account  Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// Delta returns the signed effect this entry has on its account balance.
func (e *Entry) Delta() int64 {
	if e.Kind == EntryKindExpense {
		return -e.Amount
	}
	return e.Amount
}

// CategoryTypeFor maps an entry kind to the category type it requires.
func CategoryTypeFor(kind EntryKind) CategoryType {
	if kind == EntryKindExpense {
		return CategoryTypeExpense
	}
	return CategoryTypeIncome
}
