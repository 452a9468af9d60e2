package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records a user-visible action after the fact. Rows are written
// from deferred tasks, so a write failure never affects the triggering request.
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"index" json:"user_id"`
	Action    string         `gorm:"size:64;not null;index" json:"action"`
	Resource  string         `gorm:"size:64;index" json:"resource"`
	Result    string         `gorm:"size:16;not null" json:"result"`
	IPAddress string         `gorm:"size:64" json:"ip_address"`
	UserAgent string         `gorm:"size:256" json:"user_agent"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
