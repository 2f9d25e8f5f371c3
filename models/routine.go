package models

import "time"

// Exercise is one entry of a gym routine.
type Exercise struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Routine is a reusable gym template, unique per (user, name) with
// case-insensitive name matching. Exercises holds the ordered list as
// a JSON array.
type Routine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Exercises string    `gorm:"type:text" json:"-"` // JSON array of Exercise
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
