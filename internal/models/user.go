package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primaryKey"            json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                               json:"-"`
	Name         string    `gorm:"not null"                               json:"name"`
	Role         string    `gorm:"type:varchar(16);not null"              json:"role"`
	CreatedAt    time.Time `                                              json:"createdAt"`
	UpdatedAt    time.Time `                                              json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
