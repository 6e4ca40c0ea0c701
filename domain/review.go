package domain

import "time"

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_review_user_event" json:"user_id"`
	EventID   uint64    `gorm:"column:event_id;not null;uniqueIndex:idx_review_user_event;index" json:"event_id"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewWithEvent is a review joined with the reviewed event's interest tags.
// A deleted event leaves EventInterests empty.
type ReviewWithEvent struct {
	Review
	EventInterests []string
}
