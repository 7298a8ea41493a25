package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Email      string    `json:"email" db:"email" example:"librarian@library.edu"`         // User's email address, globally unique
	Password   string    `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	FirstName  string    `json:"firstName" db:"first_name" example:"ada"`                  // User's first name, stored lower-cased
	LastName   string    `json:"lastName" db:"last_name" example:"okafor"`                 // User's last name, stored lower-cased
	RoleType   RoleType  `json:"roleType" db:"role_type" example:"LIBRARIAN"`              // User's role (ADMIN, LIBRARIAN or STUDENT)
	IsVerified bool      `json:"isVerified" db:"is_verified" example:"true"`               // Whether the account email was verified
	CreatedAt  time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
}

// FullName returns the title-cased display name used on identifier codes.
func (u *User) FullName() string {
	return titleCase(u.FirstName) + " " + titleCase(u.LastName)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}
