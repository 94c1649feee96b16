package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Reputation deltas applied on moderation and helpful votes.
const (
	ReputationInitial     = 100
	ReputationOnApproval  = 10
	ReputationOnRejection = -5
	ReputationPerHelpful  = 2
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Email       string    `json:"email" gorm:"unique"`
	Password    string    `json:"password,omitempty"`
	Role        UserRole  `json:"role" gorm:"default:user"`
	Reputation  int       `json:"reputation" gorm:"default:100"`
	ReviewCount int       `json:"review_count"`
	Reviews     []Review  `json:"reviews,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to apply account defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Reputation == 0 {
		u.Reputation = ReputationInitial
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
