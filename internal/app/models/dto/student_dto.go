package dto

// CreateStudentRequest registers a new student together with their
// user account
type CreateStudentRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MatricNumber string `json:"matricNumber" binding:"required"`
	Level        int    `json:"level" binding:"required"`
	DepartmentID int64  `json:"departmentId" binding:"required"`
	Bio          string `json:"bio"`
}

// UpdateStudentRequest is the allow-listed partial update for a student
// and their user account. Only non-nil fields overwrite existing values.
type UpdateStudentRequest struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	Email        *string `json:"email,omitempty"`
	MatricNumber *string `json:"matricNumber,omitempty"`
	Level        *int    `json:"level,omitempty"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
	Bio          *string `json:"bio,omitempty"`
}

// StudentResponse is the detail view of a student
type StudentResponse struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"userId"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Email          string         `json:"email"`
	MatricNumber   string         `json:"matricNumber"`
	Level          int            `json:"level"`
	DepartmentID   int64          `json:"departmentId"`
	DepartmentName string         `json:"departmentName,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	CodeImagePath  string         `json:"codeImagePath"`
	Borrowed       []LoanResponse `json:"borrowed,omitempty"`
	Returned       []LoanResponse `json:"returned,omitempty"`
}

// LoanResponse is the loan view embedded in book and student details
type LoanResponse struct {
	ID            int64  `json:"id"`
	BookID        int64  `json:"bookId"`
	BookTitle     string `json:"bookTitle,omitempty"`
	StudentID     int64  `json:"studentId"`
	MatricNumber  string `json:"matricNumber,omitempty"`
	Returned      bool   `json:"returned"`
	BorrowedAt    string `json:"borrowedAt"`
	DueAt         string `json:"dueAt"`
	RemainingDays int    `json:"remainingDays"`
}
