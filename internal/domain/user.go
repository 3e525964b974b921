package domain

import "time"

// User is a registered account. Users are immutable after registration.
type User struct {
	ID           int64     `gorm:"primaryKey;column:id" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return "users"
}
