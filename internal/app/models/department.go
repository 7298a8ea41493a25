package models

// Department represents an academic department students belong to
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
