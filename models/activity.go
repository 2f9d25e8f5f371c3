package models

import "time"

// Sport identifiers accepted by the scoring engine.
const (
	SportRunning   = "running"
	SportGym       = "gym"
	SportCycling   = "cycling"
	SportSwimming  = "swimming"
	SportPlaybacks = "playbacks"
	SportRugby     = "rugby"
)

// Activity is one logged workout. Points is computed once at creation
// and frozen: edits to duration, details, photo or date never change it.
// CreatedAt is the caller-supplied workout time, not server time.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	SportID   string    `gorm:"size:16;not null" json:"sport_id"`
	Duration  int       `gorm:"not null" json:"duration"` // minutes
	Points    int       `gorm:"not null" json:"points"`
	Details   string    `gorm:"size:255" json:"details"`
	PhotoURL  string    `gorm:"size:512" json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
}
