package model

import "time"

// UserAchievement tracks one user's progress on one achievement.
// UnlockedAt is set exactly once, when progress first reaches 100, and is
// only cleared by deleting the row (explicit reset).
type UserAchievement struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID       string     `gorm:"column:user_uid;size:128;not null;uniqueIndex:idx_user_achievement,priority:1"`
	AchievementID string     `gorm:"column:achievement_id;size:64;not null;uniqueIndex:idx_user_achievement,priority:2"`
	Progress      int        `gorm:"column:progress;not null;default:0"`
	UnlockedAt    *time.Time `gorm:"column:unlocked_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

func (ua *UserAchievement) Unlocked() bool {
	return ua.UnlockedAt != nil
}
