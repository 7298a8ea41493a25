package dto

// CreateBookRequest carries the registration form for a new book
type CreateBookRequest struct {
	Title      string `json:"title" binding:"required"`
	AuthorID   int64  `json:"authorId" binding:"required"`
	CategoryID int64  `json:"categoryId" binding:"required"`
	Stock      int    `json:"stock" binding:"min=0"`
}

// UpdateBookRequest is the allow-listed partial update for a book.
// Only non-nil fields overwrite existing values.
type UpdateBookRequest struct {
	Title      *string `json:"title,omitempty"`
	AuthorID   *int64  `json:"authorId,omitempty"`
	CategoryID *int64  `json:"categoryId,omitempty"`
	Stock      *int    `json:"stock,omitempty"`
}

// BookResponse augments the book model with derived fields. Borrowed
// and Returned carry the loan history on the detail endpoint only.
type BookResponse struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	AuthorID       int64          `json:"authorId"`
	AuthorName     string         `json:"authorName,omitempty"`
	CategoryID     int64          `json:"categoryId"`
	CategoryName   string         `json:"categoryName,omitempty"`
	Stock          int            `json:"stock"`
	NoBorrowed     int            `json:"noBorrowed"`
	LoanPeriodDays int            `json:"loanPeriodDays"`
	CodeImagePath  string         `json:"codeImagePath"`
	Borrowed       []LoanResponse `json:"borrowed,omitempty"`
	Returned       []LoanResponse `json:"returned,omitempty"`
}
