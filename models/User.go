package models

import (
	"gorm.io/gorm"
)

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FullName string `json:"fullName" gorm:"size:150"`
	Email    string `json:"email" gorm:"size:254"`
	Password string `json:"-"`
	Role     string `json:"role" gorm:"size:20;default:technician;index"`
	Active   *bool  `json:"active" gorm:"default:true"`
}

// IsActive treats a missing flag as active, matching the column default.
func (u *User) IsActive() bool {
	return u.Active == nil || *u.Active
}
