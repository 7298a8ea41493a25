package dto

// CreateAuthorRequest registers a new author
type CreateAuthorRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// UpdateAuthorRequest is the allow-listed partial update for an author
type UpdateAuthorRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// CreateCategoryRequest registers a new category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateCategoryRequest renames a category
type UpdateCategoryRequest struct {
	Name *string `json:"name,omitempty"`
}

// CreateDepartmentRequest registers a new department
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateDepartmentRequest renames a department
type UpdateDepartmentRequest struct {
	Name *string `json:"name,omitempty"`
}
