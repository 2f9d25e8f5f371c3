package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gymratapp/gymrat-server/models"
)

// newTestDB opens an in-memory database migrated with the full schema.
// The pool is pinned to one connection because every sqlite :memory:
// connection gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.League{},
		&models.LeagueMember{},
		&models.Activity{},
		&models.PointEntry{},
		&models.Routine{},
	))
	return db
}

func newTestLedger(db *gorm.DB) *Ledger {
	return NewLedger(db, 3, time.Millisecond)
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{Name: name}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func userTotal(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.TotalPoints
}

func memberPoints(t *testing.T, db *gorm.DB, leagueID, userID uint) int {
	t.Helper()
	var member models.LeagueMember
	require.NoError(t, db.Where("league_id = ? AND user_id = ?", leagueID, userID).
		First(&member).Error)
	return member.Points
}
