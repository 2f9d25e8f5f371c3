package models

import "time"

// LeagueMember is a (league, user) membership row carrying the user's
// running balance inside that league. A user joins at 0 points; past
// activities are never retroactively credited.
type LeagueMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeagueID  uint      `gorm:"not null;uniqueIndex:idx_league_user" json:"league_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_league_user" json:"user_id"`
	Points    int       `gorm:"default:0" json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
