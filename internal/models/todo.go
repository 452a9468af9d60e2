package models

import "time"

// Todo priority bounds. Priority 1 is the lowest, 5 the highest.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Todo is a single task item, optionally owned by a user. Deleting the owner
// clears UserID instead of cascading into the todo itself.
type Todo struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null;index" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Completed   bool   `gorm:"not null;default:false" json:"completed"`
	Priority    int    `gorm:"not null;default:1" json:"priority"`

	UserID *uint `gorm:"index" json:"user_id,omitempty"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
