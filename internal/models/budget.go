package models

import "time"

// Budget caps spending for one expense category over an inclusive date
// window. For a given (user, category) no two budgets may overlap.
type Budget struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	DateFrom    time.Time `gorm:"not null" json:"date_from"`
	DateTo      time.Time `gorm:"not null" json:"date_to"`
	Description string    `gorm:"size:500" json:"description,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Covers reports whether the given date falls inside the budget window.
func (b *Budget) Covers(date time.Time) bool {
	return !date.Before(b.DateFrom) && !date.After(b.DateTo)
}
