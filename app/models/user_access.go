package models

import "time"

// UserAccess is a sticky entitlement grant: presence of a row is the
// whole access decision. Rows are created exactly once per
// (user_id, resource_id) pair and never mutated or deleted.
type UserAccess struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(191);not null;index:ux_user_access_user_resource,unique,priority:1" json:"user_id"`
	ResourceID string    `gorm:"type:varchar(191);not null;index:ux_user_access_user_resource,unique,priority:2" json:"resource_id"`
	TextbookID uint      `gorm:"index;not null" json:"textbook_id"`
	GrantedAt  time.Time `gorm:"autoCreateTime" json:"granted_at"`
}

func (UserAccess) TableName() string {
	return "user_access"
}
