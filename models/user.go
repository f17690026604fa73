package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;unique;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // never serialized
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Forms   []Form  `gorm:"foreignKey:OwnerID" json:"-"`
	Entries []Entry `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
