package models

// Author represents a book author
type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// NoOfBooks is the number of books attributed to the author,
	// populated by list queries.
	NoOfBooks int `json:"noOfBooks"`
}
