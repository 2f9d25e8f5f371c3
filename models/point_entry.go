package models

import "time"

// LifetimeScope marks a point entry that targets users.total_points
// instead of a league membership balance.
const LifetimeScope uint = 0

// PointEntry is one row of the append-only point-change log. Every
// activity mutation records one entry per affected aggregate (the
// lifetime total plus each league the user belonged to at that moment)
// before any aggregate is touched. Applied flips to true once the
// increment landed; unapplied entries are replayed by the repair loop,
// so aggregates can always be restored from history.
type PointEntry struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ActivityID uint       `gorm:"index;not null" json:"activity_id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	LeagueID   uint       `gorm:"index" json:"league_id"` // LifetimeScope targets the profile total
	Delta      int        `gorm:"not null" json:"delta"`
	Applied    bool       `gorm:"default:false;index" json:"applied"`
	CreatedAt  time.Time  `json:"created_at"`
	AppliedAt  *time.Time `json:"applied_at,omitempty"`
}
