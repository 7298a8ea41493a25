package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
)

// Category error types
var (
	ErrCategoryNotFound   = ErrNotFound
	ErrCategoryNameExists = errors.New("category with this name already exists")
	ErrCategoryHasBooks   = errors.New("category has associated books and cannot be deleted")
)

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	sql, args, err := r.sb.Insert("categories").
		Columns("name").
		Values(category.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create category query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&category.ID); err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryNameExists
		}
		return fmt.Errorf("error creating category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by ID with its book count
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	sql, args, err := r.sb.Select("c.id", "c.name", "COUNT(b.id)").
		From("categories c").
		LeftJoin("books b ON b.category_id = c.id").
		Where(squirrel.Eq{"c.id": id}).
		GroupBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get category query: %w", err)
	}

	category := &models.Category{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&category.ID, &category.Name, &category.NoOfBooks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error getting category by id: %w", err)
	}

	return category, nil
}

// GetAll retrieves all categories with their book counts
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	sql, args, err := r.sb.Select("c.id", "c.name", "COUNT(b.id)").
		From("categories c").
		LeftJoin("books b ON b.category_id = c.id").
		GroupBy("c.id").
		OrderBy("c.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all categories query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.NoOfBooks); err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// GetStats returns category names with their book counts for dashboards
func (r *CategoryRepository) GetStats(ctx context.Context) ([]dto.CategoryStat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.name, COUNT(b.id)
		FROM categories c
		LEFT JOIN books b ON b.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying category stats: %w", err)
	}
	defer rows.Close()

	stats := []dto.CategoryStat{}
	for rows.Next() {
		var stat dto.CategoryStat
		if err := rows.Scan(&stat.Name, &stat.NoOfBooks); err != nil {
			return nil, fmt.Errorf("error scanning category stat row: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Update renames a category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	sql, args, err := r.sb.Update("categories").
		Set("name", category.Name).
		Where(squirrel.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update category query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryNameExists
		}
		return fmt.Errorf("error updating category: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete deletes a category unless books still reference it
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	var hasBooks bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM books WHERE category_id = $1)`,
		id).Scan(&hasBooks)
	if err != nil {
		return fmt.Errorf("error checking category books: %w", err)
	}
	if hasBooks {
		return ErrCategoryHasBooks
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
