// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// UserRole is the coarse role used by the library role views.
type UserRole string

const (
	// RoleAdmin grants the admin role view.
	RoleAdmin UserRole = "admin"
	// RoleLibrarian grants the librarian role view.
	RoleLibrarian UserRole = "librarian"
	// RoleMember is the default role for new accounts.
	RoleMember UserRole = "member"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

// User represents an account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	Role           UserRole  `gorm:"type:varchar(20);default:'member';not null" json:"role"`
	IsAdmin        bool      `gorm:"default:false" json:"is_admin"`
	Groups         []Group   `gorm:"many2many:user_groups;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// FollowersCount is not persisted; computed at query time
	FollowersCount int64 `gorm:"->;-:migration" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int64 `gorm:"->;-:migration" json:"following_count"`
}
