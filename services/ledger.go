package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/utils"
)

const repairBatchSize = 500

// Ledger keeps the denormalized point aggregates consistent with the
// activity log. The storage offers no transaction spanning the
// activity row and every aggregate, so the protocol is: commit the
// activity together with its point entries first, then apply each
// entry as an atomic SQL increment with a bounded retry budget.
// Entries that exhaust the budget stay recorded as unapplied and are
// replayed by the repair loop, so aggregates are always restorable
// from history.
type Ledger struct {
	db         *gorm.DB
	locks      *userLocks
	maxRetries int
	backoff    time.Duration
}

// NewLedger creates a ledger with the given retry budget per entry.
func NewLedger(db *gorm.DB, maxRetries int, backoff time.Duration) *Ledger {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Ledger{
		db:         db,
		locks:      newUserLocks(),
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// RecordEntries inserts unapplied point entries for one activity
// mutation inside the caller's transaction: one entry for the lifetime
// total plus one per league the user currently belongs to. The global
// ranking is derived from the lifetime total and never gets its own
// entry.
func (l *Ledger) RecordEntries(tx *gorm.DB, activityID, userID uint, delta int, leagueIDs []uint) ([]models.PointEntry, error) {
	targets := append([]uint{models.LifetimeScope}, utils.UniqueUint(leagueIDs)...)
	entries := make([]models.PointEntry, 0, len(targets))
	for _, leagueID := range targets {
		entries = append(entries, models.PointEntry{
			ActivityID: activityID,
			UserID:     userID,
			LeagueID:   leagueID,
			Delta:      delta,
		})
	}
	if err := tx.Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Apply applies recorded entries, serialized per user. Entries that
// exhaust their retry budget are surfaced through AggregateUpdateError
// and left for the repair loop; the others are still applied.
func (l *Ledger) Apply(ctx context.Context, entries []models.PointEntry) error {
	if len(entries) == 0 {
		return nil
	}
	userID := entries[0].UserID
	unlock := l.locks.Lock(userID)
	defer unlock()

	var pending []uint
	var lastErr error
	for i := range entries {
		if err := l.applyEntry(ctx, &entries[i]); err != nil {
			pending = append(pending, entries[i].LeagueID)
			lastErr = err
			utils.LedgerUnapplied.Inc()
			if utils.Sugar != nil {
				utils.Sugar.Errorw("point entry left unapplied",
					"entry_id", entries[i].ID,
					"user_id", userID,
					"league_id", entries[i].LeagueID,
					"delta", entries[i].Delta,
					"error", err,
				)
			}
		}
	}

	utils.InvalidateByPrefix("cache:leaderboard:")

	if len(pending) > 0 {
		return &AggregateUpdateError{UserID: userID, Pending: pending, Err: lastErr}
	}
	return nil
}

func (l *Ledger) applyEntry(ctx context.Context, entry *models.PointEntry) error {
	var err error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			utils.LedgerRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.backoff * time.Duration(attempt)):
			}
		}
		if err = l.applyOnce(ctx, entry); err == nil {
			return nil
		}
	}
	return err
}

// applyOnce increments the target aggregate and marks the entry
// applied in one small transaction, so a retry can never double-count.
// The increment runs SQL-side against the current stored value:
// concurrent deltas for the same user cannot lose updates.
func (l *Ledger) applyOnce(ctx context.Context, entry *models.PointEntry) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.LeagueID == models.LifetimeScope {
			res := tx.Model(&models.User{}).Where("id = ?", entry.UserID).
				UpdateColumn("total_points", gorm.Expr("total_points + ?", entry.Delta))
			if res.Error != nil {
				return res.Error
			}
		} else {
			// The membership may be gone already (league deleted after
			// the entry was recorded); nothing left to credit then.
			res := tx.Model(&models.LeagueMember{}).
				Where("league_id = ? AND user_id = ?", entry.LeagueID, entry.UserID).
				UpdateColumn("points", gorm.Expr("points + ?", entry.Delta))
			if res.Error != nil {
				return res.Error
			}
		}

		now := time.Now()
		if err := tx.Model(&models.PointEntry{}).Where("id = ?", entry.ID).
			Updates(map[string]interface{}{"applied": true, "applied_at": now}).Error; err != nil {
			return err
		}
		entry.Applied = true
		entry.AppliedAt = &now
		return nil
	})
}

// Reconcile replays unapplied entries from the point-change log.
// Returns how many entries were applied.
func (l *Ledger) Reconcile(ctx context.Context) (int, error) {
	var entries []models.PointEntry
	if err := l.db.WithContext(ctx).
		Where("applied = ?", false).
		Order("id").
		Limit(repairBatchSize).
		Find(&entries).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for i := range entries {
		unlock := l.locks.Lock(entries[i].UserID)
		err := l.applyEntry(ctx, &entries[i])
		unlock()
		if err != nil {
			if utils.Sugar != nil {
				utils.Sugar.Warnw("ledger repair failed for entry",
					"entry_id", entries[i].ID, "error", err)
			}
			continue
		}
		repaired++
		utils.LedgerRepaired.Inc()
	}

	if repaired > 0 {
		utils.InvalidateByPrefix("cache:leaderboard:")
	}
	return repaired, nil
}

// StartRepair runs Reconcile on a fixed interval until the returned
// stop func is called.
func (l *Ledger) StartRepair(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				n, err := l.Reconcile(context.Background())
				if err != nil && utils.Sugar != nil {
					utils.Sugar.Warnf("ledger repair pass failed: %v", err)
				}
				if n > 0 && utils.Sugar != nil {
					utils.Sugar.Infof("ledger repair applied %d pending point entries", n)
				}
			}
		}
	}()
	return func() { close(stop) }
}
