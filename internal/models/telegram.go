package models

import "time"

// LinkCode is a short-lived code a member generates to bind their Telegram
// chat to their account via the bot's /link command.
type LinkCode struct {
	ID        uint      `gorm:"primarykey"`
	Code      string    `gorm:"uniqueIndex"`
	UserID    uint      `gorm:"index"`
	ExpiresAt time.Time `gorm:"index"`
	UsedAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
