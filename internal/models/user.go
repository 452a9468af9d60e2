package models

import "time"

// User is an account able to authenticate and own todos. The password column
// always holds a bcrypt hash and is never serialised.
type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email    *string `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
