package model

import (
	"time"
)

type UserRole string

const (
	Client  UserRole = "client"
	Teacher UserRole = "teacher"
	Transit UserRole = "transit"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Client, Teacher, Transit, Admin:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	SoftDeleteModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      UserRole   `gorm:"size:20;index;default:'client'" json:"role"`
	Phone     string     `gorm:"size:30" json:"phone,omitempty"`
	Language  string     `gorm:"size:5;default:'fr'" json:"language"`
	Disabled  bool       `gorm:"default:false" json:"disabled"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}
