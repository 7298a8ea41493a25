package models

// Student defines the student model based on the 'students' table.
// Each student owns exactly one user account and many loans.
type Student struct {
	ID           int64        `json:"id" db:"id" example:"1"`                           // Unique identifier for the student record
	UserID       int64        `json:"userId" db:"user_id" example:"5"`                  // ID of the associated user account (1:1)
	MatricNumber string       `json:"matricNumber" db:"matric_number" example:"eng001"` // Unique matriculation number, stored lower-cased
	Level        StudentLevel `json:"level" db:"level" example:"300"`                   // Academic level (100-500)
	DepartmentID int64        `json:"departmentId" db:"department_id" example:"2"`      // ID of the student's department
	Bio          string       `json:"bio,omitempty" db:"bio"`                           // Free-form biography

	// Relations (populated when needed)
	User       *User       `json:"user,omitempty"`       // Associated user account
	Department *Department `json:"department,omitempty"` // Associated department
}
