// Package scheduler materializes occurrences of recurring ledger entries.
// A single periodic scan replaces per-entry timers: each tick finds the
// recurring entries whose next occurrence has come due and creates a
// regular (non-recurring) copy for each, applying the usual balance
// adjustment through the entries service.
package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/notify"
	"fintrack/internal/services"
)

// Scheduler runs the periodic recurring-entry scan.
type Scheduler struct {
	db       *gorm.DB
	entries  services.EntryServicer
	interval time.Duration
}

// New creates a scheduler scanning at the given interval.
func New(db *gorm.DB, entries services.EntryServicer, interval time.Duration) *Scheduler {
	return &Scheduler{db: db, entries: entries, interval: interval}
}

// Run scans immediately, then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Get().Infow("recurring entry scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ProcessDue(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			logger.Get().Infow("recurring entry scheduler stopped")
			return
		case now := <-ticker.C:
			s.ProcessDue(ctx, now)
		}
	}
}

// ProcessDue materializes one occurrence for every recurring entry that
// is due at now. A failure on one entry is logged and skipped; the scan
// continues with the rest and the failed entry is retried next tick.
func (s *Scheduler) ProcessDue(ctx context.Context, now time.Time) {
	var recurring []models.Entry
	err := s.db.WithContext(ctx).
		Where("is_recurring = ?", true).
		Where("end_date IS NULL OR end_date >= ?", now).
		Find(&recurring).Error
	if err != nil {
		logger.Get().Errorw("recurring entry scan failed", "error", err)
		return
	}

	for i := range recurring {
		entry := &recurring[i]
		if !s.due(entry, now) {
			continue
		}
		if err := s.materialize(entry, now); err != nil {
			logger.Get().Errorw("failed to materialize recurring entry",
				"entry_id", entry.ID, "error", err)
		}
	}
}

// due reports whether the entry's next occurrence is at or before now.
// The anchor is the last materialized occurrence, or the entry's own date
// for entries that have never recurred.
func (s *Scheduler) due(entry *models.Entry, now time.Time) bool {
	anchor := entry.Date
	if entry.LastRecurredAt != nil {
		anchor = *entry.LastRecurredAt
	}

	next := NextOccurrence(entry.RecurringPattern, anchor)
	return !next.After(now)
}

// NextOccurrence returns the occurrence following base for the pattern.
func NextOccurrence(pattern models.RecurringPattern, base time.Time) time.Time {
	switch pattern {
	case models.RecurringDaily:
		return base.AddDate(0, 0, 1)
	case models.RecurringWeekly:
		return base.AddDate(0, 0, 7)
	case models.RecurringMonthly:
		return base.AddDate(0, 1, 0)
	default:
		// Unknown pattern; push far out so the entry never fires.
		return base.AddDate(100, 0, 0)
	}
}

// materialize creates the occurrence copy and advances LastRecurredAt in
// one transaction, so a failed anchor advance rolls the copy back instead
// of leaving an occurrence that fires again next tick. The copy is a
// plain entry so it cannot itself spawn occurrences.
func (s *Scheduler) materialize(entry *models.Entry, now time.Time) error {
	var notifications []notify.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		_, notifications, txErr = s.entries.CreateEntryTx(tx, entry.Kind, entry.UserID, services.EntryInput{
			Date:        now,
			Amount:      entry.Amount,
			CategoryID:  entry.CategoryID,
			AccountID:   entry.AccountID,
			Label:       entry.Label,
			Description: entry.Description,
		})
		if txErr != nil {
			return txErr
		}
		return tx.Model(entry).Update("last_recurred_at", now).Error
	})
	if err != nil {
		return err
	}

	for i := range notifications {
		n := &notifications[i]
		logger.Get().Infow("budget notification from recurring entry",
			"user_id", n.UserID, "type", n.Type, "message", n.Message)
	}

	return nil
}
