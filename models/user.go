package models

import (
	"strings"
	"time"

	"subvenciones/tools"
)

/************************************************
/**** MARK: USER ROLES ****/
/************************************************/
const USER_ROLE_ADMIN = "admin"
const USER_ROLE_CONSULTANT = "consultant"

/************************************************
/**** MARK: USER STATUS ****/
/************************************************/
const USER_STATUS_AVAILABLE = 0
const USER_STATUS_PENDING = 1
const USER_STATUS_BLOCKED = 2

// User representa um consultor de uma organização.
type User struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID int64      `gorm:"not null;index" json:"organization_id"`
	Name           string     `gorm:"not null" json:"name" form:"name"`
	Email          string     `gorm:"not null;unique" json:"email" form:"email"`
	Password       string     `gorm:"not null" json:"password,omitempty" form:"password"`
	Phone          string     `gorm:"default:''" json:"phone" form:"phone"`
	Role           string     `gorm:"not null;default:'consultant'" json:"role" form:"role"`
	Status         int        `gorm:"default:0" json:"status" form:"status"`
	CreatedAt      *time.Time `json:"created_at" form:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at" form:"updated_at"`
}

func (user User) MissingFields() string {
	if user.Name == "" {
		return "name"
	} else if user.Email == "" {
		return "email"
	} else if user.Password == "" {
		return "password"
	} else if tools.CheckPassword(user.Password) != "" {
		return tools.CheckPassword(user.Password)
	}
	return ""
}

func (user User) IsAdmin() bool {
	return user.Role == USER_ROLE_ADMIN
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
