package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/db"
	"github.com/chidi/libman/internal/pkg/apperrors"
	"github.com/chidi/libman/internal/pkg/idcode"
)

// BookService handles book-related operations, including the identifier
// image that is rendered whenever a book is created or retitled.
type BookService struct {
	bookRepo     *repositories.BookRepository
	authorRepo   *repositories.AuthorRepository
	categoryRepo *repositories.CategoryRepository
	loanRepo     *repositories.LoanRepository
	database     *db.PostgresDB
	encoder      *idcode.Encoder
	logger       zerolog.Logger
}

// NewBookService creates a new book service instance
func NewBookService(
	bookRepo *repositories.BookRepository,
	authorRepo *repositories.AuthorRepository,
	categoryRepo *repositories.CategoryRepository,
	loanRepo *repositories.LoanRepository,
	database *db.PostgresDB,
	encoder *idcode.Encoder,
	logger zerolog.Logger,
) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		loanRepo:     loanRepo,
		database:     database,
		encoder:      encoder,
		logger:       logger,
	}
}

func bookToResponse(book *models.Book) *dto.BookResponse {
	resp := &dto.BookResponse{
		ID:             book.ID,
		Title:          book.Title,
		Slug:           book.Slug(),
		AuthorID:       book.AuthorID,
		CategoryID:     book.CategoryID,
		Stock:          book.Stock,
		NoBorrowed:     book.NoBorrowed,
		LoanPeriodDays: book.LoanPeriodDays(),
		CodeImagePath:  idcode.BookImagePath(book.Title),
	}
	if book.Author != nil {
		resp.AuthorName = book.Author.FirstName + " " + book.Author.LastName
	}
	if book.Category != nil {
		resp.CategoryName = book.Category.Name
	}
	return resp
}

func (s *BookService) bookRecord(book *models.Book) idcode.BookRecord {
	record := idcode.BookRecord{
		Title:      book.Title,
		AuthorID:   book.AuthorID,
		CategoryID: book.CategoryID,
	}
	if book.Author != nil {
		record.AuthorFirstName = book.Author.FirstName
		record.AuthorLastName = book.Author.LastName
	}
	if book.Category != nil {
		record.CategoryName = book.Category.Name
	}
	return record
}

// CreateBook registers a new book and renders its identifier image
func (s *BookService) CreateBook(ctx context.Context, req *dto.CreateBookRequest) (*dto.BookResponse, error) {
	title := strings.ToLower(strings.TrimSpace(req.Title))
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", apperrors.ErrValidationFailed)
	}

	author, err := s.authorRepo.GetByID(ctx, req.AuthorID)
	if err != nil {
		if errors.Is(err, repositories.ErrAuthorNotFound) {
			return nil, apperrors.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("error checking author: %w", err)
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error checking category: %w", err)
	}

	book := &models.Book{
		Title:      title,
		AuthorID:   req.AuthorID,
		CategoryID: req.CategoryID,
		Stock:      req.Stock,
		Author:     author,
		Category:   category,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, repositories.ErrTitleAlreadyExists) {
			return nil, apperrors.ErrTitleAlreadyExists
		}
		return nil, fmt.Errorf("error creating book: %w", err)
	}

	if _, err := s.encoder.WriteBook(s.bookRecord(book)); err != nil {
		s.logger.Error().Err(err).Int64("bookId", book.ID).Msg("Failed to write book identifier image")
	}

	return bookToResponse(book), nil
}

// GetBookByID retrieves a book with its loans partitioned into borrowed
// (outstanding) and returned
func (s *BookService) GetBookByID(ctx context.Context, id int64) (*dto.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error retrieving book: %w", err)
	}

	resp := bookToResponse(book)

	loans, err := s.loanRepo.GetByBookID(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving book loans: %w", err)
	}

	resp.Borrowed, resp.Returned = partitionLoans(loans, time.Now())

	return resp, nil
}

// GetAllBooks retrieves all books
func (s *BookService) GetAllBooks(ctx context.Context) ([]*dto.BookResponse, error) {
	books, err := s.bookRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving books: %w", err)
	}

	responses := make([]*dto.BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, bookToResponse(book))
	}
	return responses, nil
}

// UpdateBook applies the allow-listed fields of req to the book. A title
// change moves the identifier image to the path derived from the new
// title; the stale image is deleted so old codes cannot be scanned.
func (s *BookService) UpdateBook(ctx context.Context, id int64, req *dto.UpdateBookRequest) (*dto.BookResponse, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error retrieving book: %w", err)
	}

	oldImagePath := idcode.BookImagePath(book.Title)
	recordChanged := false

	if req.Title != nil {
		title := strings.ToLower(strings.TrimSpace(*req.Title))
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
		}
		if title != book.Title {
			exists, err := s.bookRepo.TitleExists(ctx, title, book.ID)
			if err != nil {
				return nil, fmt.Errorf("error checking title: %w", err)
			}
			if exists {
				return nil, apperrors.ErrTitleAlreadyExists
			}
			book.Title = title
			recordChanged = true
		}
	}

	if req.AuthorID != nil && *req.AuthorID != book.AuthorID {
		author, err := s.authorRepo.GetByID(ctx, *req.AuthorID)
		if err != nil {
			if errors.Is(err, repositories.ErrAuthorNotFound) {
				return nil, apperrors.ErrAuthorNotFound
			}
			return nil, fmt.Errorf("error checking author: %w", err)
		}
		book.AuthorID = *req.AuthorID
		book.Author = author
		recordChanged = true
	}

	if req.CategoryID != nil && *req.CategoryID != book.CategoryID {
		category, err := s.categoryRepo.GetByID(ctx, *req.CategoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrCategoryNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, fmt.Errorf("error checking category: %w", err)
		}
		book.CategoryID = *req.CategoryID
		book.Category = category
		recordChanged = true
	}

	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", apperrors.ErrValidationFailed)
		}
		book.Stock = *req.Stock
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		if errors.Is(err, repositories.ErrTitleAlreadyExists) {
			return nil, apperrors.ErrTitleAlreadyExists
		}
		return nil, fmt.Errorf("error updating book: %w", err)
	}

	if recordChanged {
		_, err := s.encoder.Rename(oldImagePath, func() (string, error) {
			return s.encoder.WriteBook(s.bookRecord(book))
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("bookId", book.ID).Msg("Failed to regenerate book identifier image")
		}
	}

	return bookToResponse(book), nil
}

// DeleteBook removes a book, its loans and its identifier image
func (s *BookService) DeleteBook(ctx context.Context, id int64) error {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return apperrors.ErrBookNotFound
		}
		return fmt.Errorf("error retrieving book: %w", err)
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.bookRepo.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return apperrors.ErrBookNotFound
		}
		return fmt.Errorf("error deleting book: %w", err)
	}

	if err := s.encoder.Remove(idcode.BookImagePath(book.Title)); err != nil {
		s.logger.Error().Err(err).Int64("bookId", id).Msg("Failed to remove book identifier image")
	}

	return nil
}
