package models

import "time"

// Loan links one book copy to one student for a bounded period,
// based on the 'loans' table.
type Loan struct {
	ID         int64     `json:"id" db:"id"`
	BookID     int64     `json:"bookId" db:"book_id"`
	StudentID  int64     `json:"studentId" db:"student_id"`
	Returned   bool      `json:"returned" db:"returned"`
	BorrowedAt time.Time `json:"borrowedAt" db:"borrowed_at"`
	DueAt      time.Time `json:"dueAt" db:"due_at"`

	// Relations (populated when needed)
	Book    *Book    `json:"book,omitempty"`
	Student *Student `json:"student,omitempty"`
}

// RemainingDays reports whole days left until the due date at now,
// floored at zero for overdue loans.
func (l *Loan) RemainingDays(now time.Time) int {
	days := int(l.DueAt.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
