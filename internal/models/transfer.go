package models

import "time"

// Transfer is an atomic two-account balance move. Transfers are immutable
// once created; deleting one reverses both legs.
type Transfer struct {
	Base
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Date          time.Time `gorm:"not null" json:"date"`
	Amount        int64     `gorm:"type:bigint;not null" json:"amount"`
	FromAccountID string    `gorm:"type:uuid;not null;index" json:"from_account_id"`
	ToAccountID   string    `gorm:"type:uuid;not null;index" json:"to_account_id"`
	Description   string    `gorm:"size:500" json:"description,omitempty"`

	FromAccount Account `gorm:"foreignKey:FromAccountID" json:"from_account,omitempty"`
	ToAccount   Account `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
}
