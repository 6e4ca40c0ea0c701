package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent   = "student"
	RoleOrganiser = "organiser"
	RoleAdmin     = "admin"
)

type User struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	FullName   string                      `gorm:"column:full_name;not null" json:"full_name"`
	Email      string                      `gorm:"column:email;unique;not null" json:"email"`
	IsVerified bool                        `gorm:"column:is_verified;default:false" json:"is_verified"`
	Password   string                      `gorm:"column:password;not null" json:"-"`
	Role       string                      `gorm:"column:role;default:student" json:"role"`
	Interests  datatypes.JSONSlice[string] `gorm:"column:interests;type:jsonb" json:"interests"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	DeletedAt  gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
