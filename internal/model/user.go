package model

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User mirrors the identity provider's account with an explicit role claim.
// Admin access is decided by Role, not by comparing emails.
type User struct {
	UID         string    `gorm:"column:uid;primaryKey;size:128"`
	DisplayName string    `gorm:"column:display_name;size:120"`
	Role        string    `gorm:"column:role;size:32;not null;default:'member'"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
