package model

import "time"

// User links a Telegram account to a YouGile member.
type User struct {
	TelegramID       int64  `gorm:"primaryKey"`
	TelegramUsername string `gorm:"index"`
	YougileEmail     string
	YougileID        string
	DefaultColumnID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLinked reports whether the user has attached a YouGile account.
// YougileID is only meaningful when the email is set; both are written
// together by the linking flow.
func (u *User) IsLinked() bool {
	return u.YougileEmail != ""
}

// HasDefaultColumn reports whether the user picked a column for new tasks.
func (u *User) HasDefaultColumn() bool {
	return u.DefaultColumnID != ""
}
