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

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo *repositories.CategoryRepository
}

// NewCategoryService creates a new category service instance
func NewCategoryService(categoryRepo *repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*models.Category, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryNameExists) {
			return nil, apperrors.ErrCategoryNameExists
		}
		return nil, fmt.Errorf("error creating category: %w", err)
	}

	return category, nil
}

// GetCategoryByID retrieves a category by ID
func (s *CategoryService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error retrieving category: %w", err)
	}
	return category, nil
}

// GetAllCategories retrieves all categories
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving categories: %w", err)
	}
	return categories, nil
}

// GetCategoryStats returns category names with their book counts
func (s *CategoryService) GetCategoryStats(ctx context.Context) ([]dto.CategoryStat, error) {
	stats, err := s.categoryRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving category stats: %w", err)
	}
	return stats, nil
}

// UpdateCategory applies the allow-listed fields of req to the category
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*req.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
		}
		category.Name = name
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		if errors.Is(err, repositories.ErrCategoryNameExists) {
			return nil, apperrors.ErrCategoryNameExists
		}
		return nil, fmt.Errorf("error updating category: %w", err)
	}

	return category, nil
}

// DeleteCategory deletes a category by ID
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		if errors.Is(err, repositories.ErrCategoryHasBooks) {
			return apperrors.NewConflictError("category still has books")
		}
		return fmt.Errorf("error deleting category: %w", err)
	}
	return nil
}
