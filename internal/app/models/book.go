package models

import (
	"time"

	"github.com/chidi/libman/internal/pkg/slug"
)

// Loan period policy: scarce books circulate faster.
const (
	shortLoanDays      = 6
	standardLoanDays   = 10
	scarceStockCeiling = 10
)

// Book defines the book model based on the 'books' table
type Book struct {
	ID         int64     `json:"id" db:"id" example:"1"`                                   // Unique identifier for the book
	Title      string    `json:"title" db:"title" example:"algorithms"`                    // Unique title, stored lower-cased
	AuthorID   int64     `json:"authorId" db:"author_id" example:"3"`                      // ID of the book's author
	CategoryID int64     `json:"categoryId" db:"category_id" example:"2"`                  // ID of the book's category
	Stock      int       `json:"stock" db:"stock" example:"5"`                             // Copies currently on the shelf, never negative
	CreatedAt  time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the book was registered

	// Relations (populated when needed)
	Author   *Author   `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`

	// NoBorrowed is the count of unreturned loans, populated by queries.
	NoBorrowed int `json:"noBorrowed"`
}

// Slug is derived from the current title and never stored.
func (b *Book) Slug() string {
	return slug.Make(b.Title)
}

// LoanPeriodDays returns the borrowing period for the book at its
// current stock level. Books running low circulate on a shorter leash.
func (b *Book) LoanPeriodDays() int {
	if b.Stock < scarceStockCeiling {
		return shortLoanDays
	}
	return standardLoanDays
}

// DueDate computes the due timestamp for a loan taken at borrowedAt.
func (b *Book) DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(time.Duration(b.LoanPeriodDays()) * 24 * time.Hour)
}
