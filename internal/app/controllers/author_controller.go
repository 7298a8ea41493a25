package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/services"
	"github.com/chidi/libman/internal/middleware"
)

// AuthorController handles author-related operations
type AuthorController struct {
	authorService *services.AuthorService
}

// NewAuthorController creates a new AuthorController
func NewAuthorController(authorService *services.AuthorService) *AuthorController {
	return &AuthorController{authorService: authorService}
}

// CreateAuthor handles author creation
// @Summary Create a new author
// @Tags authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAuthorRequest true "Author information"
// @Success 201 {object} dto.APIResponse{data=models.Author} "Author created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Author already exists"
// @Router /authors [post]
func (c *AuthorController) CreateAuthor(ctx *gin.Context) {
	var req dto.CreateAuthorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	author, err := c.authorService.CreateAuthor(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, author)
}

// GetAuthorByID retrieves an author by ID
// @Summary Get author by ID
// @Tags authors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 200 {object} dto.APIResponse{data=models.Author} "Author retrieved"
// @Failure 404 {object} dto.ErrorResponse "Author not found"
// @Router /authors/{id} [get]
func (c *AuthorController) GetAuthorByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	author, err := c.authorService.GetAuthorByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, author)
}

// GetAllAuthors retrieves all authors
// @Summary Get all authors
// @Tags authors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Author} "Authors retrieved"
// @Router /authors [get]
func (c *AuthorController) GetAllAuthors(ctx *gin.Context) {
	authors, err := c.authorService.GetAllAuthors(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, authors)
}

// UpdateAuthor updates an existing author
// @Summary Update an author
// @Tags authors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Param request body dto.UpdateAuthorRequest true "Updated author fields"
// @Success 200 {object} dto.APIResponse{data=models.Author} "Author updated"
// @Failure 404 {object} dto.ErrorResponse "Author not found"
// @Failure 409 {object} dto.ErrorResponse "Author already exists"
// @Router /authors/{id} [put]
func (c *AuthorController) UpdateAuthor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateAuthorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	author, err := c.authorService.UpdateAuthor(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, author)
}

// DeleteAuthor deletes an author
// @Summary Delete an author
// @Tags authors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Author ID"
// @Success 204 "Author deleted"
// @Failure 404 {object} dto.ErrorResponse "Author not found"
// @Failure 409 {object} dto.ErrorResponse "Author still has books"
// @Router /authors/{id} [delete]
func (c *AuthorController) DeleteAuthor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.authorService.DeleteAuthor(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
