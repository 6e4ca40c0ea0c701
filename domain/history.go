package domain

import "time"

// MaxHistoryPerType is how many search or view entries are kept per user.
const MaxHistoryPerType = 20

type SearchHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index:idx_search_user_created" json:"user_id"`
	Query     string    `gorm:"column:query;type:text;not null" json:"query"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_search_user_created" json:"created_at"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}

type ViewHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index:idx_view_user_created" json:"user_id"`
	EventID   uint64    `gorm:"column:event_id;not null" json:"event_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_view_user_created" json:"created_at"`
}

func (ViewHistory) TableName() string {
	return "view_history"
}

type History struct {
	Searches []SearchHistory `json:"searches"`
	Views    []ViewHistory   `json:"views"`
}
