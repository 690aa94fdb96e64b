// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account that can receive anonymous messages through
// its public profile link. A user is authenticatable only once IsVerified
// is set by a successful verification-code confirmation.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"unique;not null" json:"username"`
	Email               string    `gorm:"unique;not null" json:"email"`
	Password            string    `gorm:"not null" json:"-"`
	VerifyCode          string    `gorm:"size:6" json:"-"`
	VerifyCodeExpiry    time.Time `json:"-"`
	IsVerified          bool      `gorm:"default:false" json:"is_verified"`
	// No gorm default: a false value must survive inserts as-is. The
	// signup path sets this to true explicitly.
	IsAcceptingMessages bool      `json:"is_accepting_messages"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Messages            []Message `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}
