package models

// Role represents a user's authorization level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultCurrency is the currency new users start with.
const DefaultCurrency = "LKR"

// User represents the user model in the database
type User struct {
	Base
	UserName string `gorm:"not null;size:30" json:"user_name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"not null;default:'user'" json:"role"`
	// Currency is the user's preferred display currency. Changing it
	// re-denominates every account the user owns.
	Currency string `gorm:"not null;default:'LKR'" json:"currency"`

	Accounts   []Account  `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Categories []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Entries    []Entry    `gorm:"foreignKey:UserID" json:"entries,omitempty"`
	Budgets    []Budget   `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
