package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID          uint64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string                       `gorm:"column:title;type:text;not null" json:"title"`
	Description string                       `gorm:"column:description;type:text" json:"description"`
	Location    string                       `gorm:"column:location;type:text" json:"location"`
	StartDate   time.Time                    `gorm:"column:start_date;index;not null" json:"start_date"`
	EndDate     time.Time                    `gorm:"column:end_date" json:"end_date"`
	OrganiserID uint                         `gorm:"column:organiser_id;index;not null" json:"organiser_id"`
	Interests   datatypes.JSONSlice[string]  `gorm:"column:interests;type:jsonb" json:"interests"`
	Capacity    *int                         `gorm:"column:capacity" json:"capacity,omitempty"`
	SignupCount int                          `gorm:"column:signup_count;default:0;not null" json:"signup_count"`
	SignupsOpen bool                         `gorm:"column:signups_open;default:true;not null" json:"signups_open"`
	Embedding   datatypes.JSONSlice[float32] `gorm:"column:embedding;type:jsonb" json:"-"`
	CreatedAt   time.Time                    `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"column:updated_at" json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// IsFull reports whether a capacity is set and reached.
func (e Event) IsFull() bool {
	return e.Capacity != nil && e.SignupCount >= *e.Capacity
}

// EmbeddingText is the text fed to the embedding provider when an event is indexed.
func (e Event) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(e.Title)
	if e.Description != "" {
		b.WriteString(". ")
		b.WriteString(e.Description)
	}
	if len(e.Interests) > 0 {
		b.WriteString(". Topics: ")
		b.WriteString(strings.Join(e.Interests, ", "))
	}
	if e.Location != "" {
		b.WriteString(". Location: ")
		b.WriteString(e.Location)
	}
	return b.String()
}
