package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:50"                  json:"username"`
	Email        string    `gorm:"size:250;unique;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null"        json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Avatar       string    `gorm:"size:255"                 json:"avatar"`
	RefreshToken string    `gorm:"size:512"                 json:"-"`
	Confirmed    bool      `gorm:"default:false"            json:"confirmed"`

	Contacts []Contact `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Contact struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name     string    `gorm:"size:50;uniqueIndex:fullname_uc"       json:"name"`
	Lastname string    `gorm:"size:100;uniqueIndex:fullname_uc"      json:"lastname"`
	Email    string    `gorm:"size:100;unique"                       json:"email"`
	Phone    string    `gorm:"size:50"                               json:"phone"`
	Birthday time.Time `json:"birthday"`
	Note     string    `gorm:"size:250"                              json:"note"`
	UserID   uint      `gorm:"index;not null"                        json:"user_id"`
}
