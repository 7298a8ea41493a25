package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin     RoleType = "ADMIN"
	RoleLibrarian RoleType = "LIBRARIAN"
	RoleStudent   RoleType = "STUDENT"
)

// StudentLevel is the academic level of a student
type StudentLevel int

// Valid student levels
const (
	Level100 StudentLevel = 100
	Level200 StudentLevel = 200
	Level300 StudentLevel = 300
	Level400 StudentLevel = 400
	Level500 StudentLevel = 500
)

// IsValid reports whether the level is one of the allowed values.
func (l StudentLevel) IsValid() bool {
	switch l {
	case Level100, Level200, Level300, Level400, Level500:
		return true
	}
	return false
}
