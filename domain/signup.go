package domain

import "time"

type Signup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_signup_user_event" json:"user_id"`
	EventID   uint64    `gorm:"column:event_id;not null;uniqueIndex:idx_signup_user_event;index" json:"event_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Signup) TableName() string {
	return "signups"
}
