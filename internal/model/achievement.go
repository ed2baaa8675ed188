package model

import "time"

// Achievement is an immutable catalog row. Rows are seeded by cmd/seed and
// only change through the admin surface.
type Achievement struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Title       string    `gorm:"size:120;not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"size:64;index;not null"`
	Points      uint      `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Achievement) TableName() string {
	return "achievements"
}
