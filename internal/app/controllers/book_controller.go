package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/services"
	"github.com/chidi/libman/internal/middleware"
)

// BookController handles book-related operations
type BookController struct {
	bookService *services.BookService
}

// NewBookController creates a new BookController
func NewBookController(bookService *services.BookService) *BookController {
	return &BookController{bookService: bookService}
}

// CreateBook handles book registration
// @Summary Register a new book
// @Description Registers a book and renders its identifier code image
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBookRequest true "Book information"
// @Success 201 {object} dto.APIResponse{data=dto.BookResponse} "Book created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Author or category not found"
// @Failure 409 {object} dto.ErrorResponse "Book title already exists"
// @Router /books [post]
func (c *BookController) CreateBook(ctx *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(ctx, &req) {
		return
	}

	book, err := c.bookService.CreateBook(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, book)
}

// GetBookByID retrieves a book by ID
// @Summary Get book by ID
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} dto.APIResponse{data=dto.BookResponse} "Book retrieved"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [get]
func (c *BookController) GetBookByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	book, err := c.bookService.GetBookByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, book)
}

// GetAllBooks retrieves all books
// @Summary Get all books
// @Tags books
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.BookResponse} "Books retrieved"
// @Router /books [get]
func (c *BookController) GetAllBooks(ctx *gin.Context) {
	books, err := c.bookService.GetAllBooks(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, books)
}

// UpdateBook updates an existing book
// @Summary Update a book
// @Description Updates book fields; a title change moves the identifier code image
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body dto.UpdateBookRequest true "Updated book fields"
// @Success 200 {object} dto.APIResponse{data=dto.BookResponse} "Book updated"
// @Failure 404 {object} dto.ErrorResponse "Book, author or category not found"
// @Failure 409 {object} dto.ErrorResponse "Book title already exists"
// @Router /books/{id} [put]
func (c *BookController) UpdateBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if !bindJSON(ctx, &req) {
		return
	}

	book, err := c.bookService.UpdateBook(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, book)
}

// DeleteBook deletes a book
// @Summary Delete a book
// @Description Deletes a book, its loans and its identifier code image
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 204 "Book deleted"
// @Failure 404 {object} dto.ErrorResponse "Book not found"
// @Router /books/{id} [delete]
func (c *BookController) DeleteBook(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.bookService.DeleteBook(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
