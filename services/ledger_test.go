package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
)

func recordAndApply(t *testing.T, db *gorm.DB, ledger *Ledger, userID uint, delta int, leagueIDs []uint) {
	t.Helper()
	var entries []models.PointEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		entries, err = ledger.RecordEntries(tx, 1, userID, delta, leagueIDs)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, ledger.Apply(context.Background(), entries))
}

func TestLedgerAppliesLifetimeAndLeagueDeltas(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	user := seedUser(t, db, "ana")

	league := models.League{OwnerID: user.ID, Name: "Crew", Code: "CRE123"}
	require.NoError(t, db.Create(&league).Error)
	require.NoError(t, db.Create(&models.LeagueMember{LeagueID: league.ID, UserID: user.ID}).Error)

	recordAndApply(t, db, ledger, user.ID, 50, []uint{league.ID})
	assert.Equal(t, 50, userTotal(t, db, user.ID))
	assert.Equal(t, 50, memberPoints(t, db, league.ID, user.ID))

	recordAndApply(t, db, ledger, user.ID, -20, []uint{league.ID})
	assert.Equal(t, 30, userTotal(t, db, user.ID))
	assert.Equal(t, 30, memberPoints(t, db, league.ID, user.ID))

	var entries []models.PointEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.True(t, e.Applied)
		assert.NotNil(t, e.AppliedAt)
	}
}

func TestLedgerToleratesVanishedMembership(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	user := seedUser(t, db, "bea")

	// League id 99 has no membership row; the league entry must apply
	// as a no-op while the lifetime entry still lands.
	recordAndApply(t, db, ledger, user.ID, 40, []uint{99})
	assert.Equal(t, 40, userTotal(t, db, user.ID))
}

func TestLedgerConcurrentAppliesLoseNoUpdates(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	user := seedUser(t, db, "carl")

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var entries []models.PointEntry
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				entries, err = ledger.RecordEntries(tx, 1, user.ID, 10, nil)
				return err
			})
			if err != nil {
				return
			}
			_ = ledger.Apply(context.Background(), entries)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*10, userTotal(t, db, user.ID))
}

func TestReconcileReplaysUnappliedEntries(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	user := seedUser(t, db, "dana")

	// Simulate an entry that was committed but never applied, as after
	// a crash between the activity commit and the aggregate update.
	entry := models.PointEntry{ActivityID: 1, UserID: user.ID, LeagueID: models.LifetimeScope, Delta: 25}
	require.NoError(t, db.Create(&entry).Error)
	assert.Equal(t, 0, userTotal(t, db, user.ID))

	n, err := ledger.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 25, userTotal(t, db, user.ID))

	// A second pass finds nothing left to do.
	n, err = ledger.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecordEntriesDeduplicatesLeagues(t *testing.T) {
	db := newTestDB(t)
	ledger := newTestLedger(db)
	user := seedUser(t, db, "eve")

	var entries []models.PointEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		entries, err = ledger.RecordEntries(tx, 1, user.ID, 10, []uint{7, 7, 8})
		return err
	})
	require.NoError(t, err)
	// Lifetime plus two distinct leagues.
	assert.Len(t, entries, 3)
}
