package models

import "time"

// League is a competition group with its own leaderboard. Codes are
// stored uppercase and carry a unique index so joinByCode matches are
// exact and collisions are rejected at the storage layer.
//
// The global ranking is not a League row; it is projected from
// users.total_points under the fixed id "global".
type League struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"index;not null" json:"owner_id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Code        string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	Prize       string    `gorm:"size:255" json:"prize"`
	Punishment  string    `gorm:"size:255" json:"punishment"`
	EndDate     time.Time `json:"end_date"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GlobalLeagueID is the sentinel id of the implicit global ranking.
// It can never collide with real league ids, which are numeric.
const GlobalLeagueID = "global"
