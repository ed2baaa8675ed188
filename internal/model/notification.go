package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypeAchievement = "achievement"
	NotificationTypeLevelUp     = "level_up"
)

type Notification struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	UserUID     string         `gorm:"column:user_uid;size:128;index;not null"`
	Type        string         `gorm:"column:type;size:64;not null"`
	Title       string         `gorm:"column:title;size:255"`
	Message     string         `gorm:"column:message;type:text"`
	IsImportant bool           `gorm:"column:is_important;not null;default:false"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
	ReadAt      *time.Time     `gorm:"column:read_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
