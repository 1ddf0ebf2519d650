package models

// AccountGroup classifies a monetary account
type AccountGroup string

const (
	AccountGroupCash    AccountGroup = "cash"
	AccountGroupBank    AccountGroup = "bank"
	AccountGroupCard    AccountGroup = "card"
	AccountGroupSavings AccountGroup = "savings"
)

// Account represents a monetary account in the system. Amount is a cached
// running total in cents: it is only ever mutated through atomic
// balance adjustments issued by the ledger and transfer services, or
// replaced wholesale by the currency conversion routine.
type Account struct {
	Base
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Group        AccountGroup `gorm:"not null" json:"group"`
	Name         string       `gorm:"not null;size:50" json:"name"`
	Amount       int64        `gorm:"type:bigint;not null;default:0" json:"amount"`
	BaseCurrency string       `gorm:"not null;default:'LKR'" json:"base_currency"`
	Description  string       `gorm:"size:500" json:"description"`

	// Display conversion, populated at read time when the user's preferred
	// currency differs from BaseCurrency. Never persisted.
	ConvertedAmount *int64 `gorm:"-" json:"converted_amount,omitempty"`
	DisplayCurrency string `gorm:"-" json:"display_currency,omitempty"`

	Entries []Entry `gorm:"foreignKey:AccountID" json:"entries,omitempty"`
}
