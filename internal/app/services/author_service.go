package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/pkg/apperrors"
)

// AuthorService handles author-related operations
type AuthorService struct {
	authorRepo *repositories.AuthorRepository
}

// NewAuthorService creates a new author service instance
func NewAuthorService(authorRepo *repositories.AuthorRepository) *AuthorService {
	return &AuthorService{authorRepo: authorRepo}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateAuthor creates a new author
func (s *AuthorService) CreateAuthor(ctx context.Context, req *dto.CreateAuthorRequest) (*models.Author, error) {
	author := &models.Author{
		FirstName: normalizeName(req.FirstName),
		LastName:  normalizeName(req.LastName),
	}
	if author.FirstName == "" || author.LastName == "" {
		return nil, fmt.Errorf("%w: author name cannot be empty", apperrors.ErrValidationFailed)
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		if errors.Is(err, repositories.ErrAuthorAlreadyExists) {
			return nil, apperrors.ErrAuthorAlreadyExists
		}
		return nil, fmt.Errorf("error creating author: %w", err)
	}

	return author, nil
}

// GetAuthorByID retrieves an author by ID
func (s *AuthorService) GetAuthorByID(ctx context.Context, id int64) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAuthorNotFound) {
			return nil, apperrors.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("error retrieving author: %w", err)
	}
	return author, nil
}

// GetAllAuthors retrieves all authors
func (s *AuthorService) GetAllAuthors(ctx context.Context) ([]*models.Author, error) {
	authors, err := s.authorRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving authors: %w", err)
	}
	return authors, nil
}

// UpdateAuthor applies the allow-listed fields of req to the author
func (s *AuthorService) UpdateAuthor(ctx context.Context, id int64, req *dto.UpdateAuthorRequest) (*models.Author, error) {
	author, err := s.GetAuthorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		author.FirstName = normalizeName(*req.FirstName)
	}
	if req.LastName != nil {
		author.LastName = normalizeName(*req.LastName)
	}
	if author.FirstName == "" || author.LastName == "" {
		return nil, fmt.Errorf("%w: author name cannot be empty", apperrors.ErrValidationFailed)
	}

	if err := s.authorRepo.Update(ctx, author); err != nil {
		if errors.Is(err, repositories.ErrAuthorNotFound) {
			return nil, apperrors.ErrAuthorNotFound
		}
		if errors.Is(err, repositories.ErrAuthorAlreadyExists) {
			return nil, apperrors.ErrAuthorAlreadyExists
		}
		return nil, fmt.Errorf("error updating author: %w", err)
	}

	return author, nil
}

// DeleteAuthor deletes an author by ID
func (s *AuthorService) DeleteAuthor(ctx context.Context, id int64) error {
	err := s.authorRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAuthorNotFound) {
			return apperrors.ErrAuthorNotFound
		}
		if errors.Is(err, repositories.ErrAuthorHasBooks) {
			return apperrors.NewConflictError("author still has books")
		}
		return fmt.Errorf("error deleting author: %w", err)
	}
	return nil
}
