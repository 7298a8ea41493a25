package dto

// StageBorrowRequest is the selection step submission: the flat form
// mapping pairing "<bookId>_selected" markers with comma-separated
// matric number fields.
type StageBorrowRequest struct {
	Form map[string]string `json:"form" binding:"required"`
}

// StageBorrowResponse carries the confirmation token plus a preview of
// what was understood, mirroring the confirmation page of the flow.
type StageBorrowResponse struct {
	ConfirmationToken string            `json:"confirmationToken"`
	Books             []BookResponse    `json:"books"`
	Students          []StudentResponse `json:"students"`
	NotFound          []string          `json:"notFound,omitempty"`
}

// ConfirmBorrowRequest commits a previously staged selection
type ConfirmBorrowRequest struct {
	ConfirmationToken string `json:"confirmationToken" binding:"required"`
}

// Outcome states for a single (book, matric) entry of a confirmation
const (
	BorrowOutcomeBorrowed   = "borrowed"
	BorrowOutcomeSkipped    = "skipped"
	BorrowOutcomeOutOfStock = "out_of_stock"
)

// BorrowOutcome reports what happened to one (book, matric) entry
type BorrowOutcome struct {
	BookID       int64  `json:"bookId"`
	BookTitle    string `json:"bookTitle,omitempty"`
	MatricNumber string `json:"matricNumber"`
	Status       string `json:"status"`
	DueAt        string `json:"dueAt,omitempty"`
}

// ConfirmBorrowResponse is the per-entry outcome list of a confirmation
type ConfirmBorrowResponse struct {
	Outcomes []BorrowOutcome `json:"outcomes"`
}

// QRBorrowRequest is the single-pair shortcut used by code scanning:
// one student (by user id) borrowing one book (by title).
type QRBorrowRequest struct {
	UserID    int64  `json:"userId" binding:"required"`
	BookTitle string `json:"bookTitle" binding:"required"`
}

// CategoryStat is one entry of the category statistics listing
type CategoryStat struct {
	Name      string `json:"name"`
	NoOfBooks int    `json:"no_of_books"`
}
