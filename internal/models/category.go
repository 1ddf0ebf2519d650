package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a typed transaction label owned by one user.
// The (user, type, name) triple is unique.
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;uniqueIndex:idx_user_type_name" json:"user_id"`
	Type   CategoryType `gorm:"not null;uniqueIndex:idx_user_type_name" json:"type"`
	Name   string       `gorm:"not null;size:50;uniqueIndex:idx_user_type_name" json:"name"`

	Entries []Entry  `gorm:"foreignKey:CategoryID" json:"entries,omitempty"`
	Budgets []Budget `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
