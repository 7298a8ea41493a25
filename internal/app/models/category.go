package models

// Category represents a book category with a unique name
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// NoOfBooks is the number of books in the category,
	// populated by list queries.
	NoOfBooks int `json:"noOfBooks"`
}
