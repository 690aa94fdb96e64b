package models

import "time"

// Message is a single anonymous message in a user's mailbox. Messages are
// owned exclusively by their parent user: they are appended by the public
// submission path and removed only by the owning session.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
