package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a member profile. TotalPoints is a denormalized lifetime
// aggregate: only the points ledger may write it.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Avatar      string    `gorm:"size:512" json:"avatar"` // emoji or image URL
	Bio         string    `gorm:"size:255" json:"bio"`
	Weight      float64   `json:"weight"`
	Height      int       `json:"height"`
	TotalPoints int       `gorm:"default:0" json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
