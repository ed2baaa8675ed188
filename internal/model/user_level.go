package model

import "time"

// UserLevel is derived state: level and total points are always rewritten
// from a full re-scan of unlocked achievements, never patched incrementally.
type UserLevel struct {
	UserUID     string    `gorm:"column:user_uid;primaryKey;size:128"`
	Level       int       `gorm:"column:level;not null;default:1"`
	TotalPoints int       `gorm:"column:total_points;not null;default:0"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (UserLevel) TableName() string {
	return "user_levels"
}
