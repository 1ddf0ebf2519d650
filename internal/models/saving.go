package models

import "time"

// SavingStatus tracks the lifecycle of a savings goal
type SavingStatus string

const (
	SavingStatusInProgress SavingStatus = "In Progress"
	SavingStatusCompleted  SavingStatus = "Completed"
	SavingStatusAbandoned  SavingStatus = "Abandoned"
)

// Saving is a savings goal: a target amount to reach by a target date.
// Savings goals never touch account balances.
type Saving struct {
	Base
	UserID        string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string       `gorm:"not null;size:50" json:"name"`
	Amount        int64        `gorm:"type:bigint;not null" json:"amount"`
	CurrentAmount int64        `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate    time.Time    `gorm:"not null" json:"target_date"`
	Status        SavingStatus `gorm:"not null;default:'In Progress'" json:"status"`
	Description   string       `gorm:"size:500" json:"description,omitempty"`
}
