// Package notify implements the budget threshold monitor: a stateless
// check that compares spending against a budget cap and emits warning
// and alert notifications. It never mutates balances.
package notify

import "fmt"

// NotificationType distinguishes soft warnings from hard alerts.
type NotificationType string

const (
	TypeWarning NotificationType = "warning"
	TypeAlert   NotificationType = "alert"
)

// Notification is an ephemeral message produced after an expense pushes a
// budget past a threshold. Notifications are returned to the caller, not
// persisted.
type Notification struct {
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	UserID  string           `json:"user_id"`
}

// CheckBudgetThresholds compares total spending against a budget cap and
// returns any threshold notifications. A warning fires at 80% of the cap
// and an alert at 100%; the alert message carries the overage percentage.
// Amounts are cents.
func CheckBudgetThresholds(categoryName string, spent, budgetCap int64, userID string) []Notification {
	if budgetCap <= 0 {
		return nil
	}

	var notifications []Notification
	percentSpent := float64(spent) / float64(budgetCap) * 100

	if percentSpent >= 80 && percentSpent < 100 {
		notifications = append(notifications, Notification{
			Type:    TypeWarning,
			Title:   "Budget Warning",
			Message: fmt.Sprintf("You've used %.1f%% of your budget for %s", percentSpent, categoryName),
			UserID:  userID,
		})
	}

	if percentSpent >= 100 {
		notifications = append(notifications, Notification{
			Type:    TypeAlert,
			Title:   "Budget Exceeded",
			Message: fmt.Sprintf("You've exceeded your budget for %s by %.1f%%", categoryName, percentSpent-100),
			UserID:  userID,
		})
	}

	return notifications
}
