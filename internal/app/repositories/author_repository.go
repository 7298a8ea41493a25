package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chidi/libman/internal/app/models"
)

// Author error types
var (
	ErrAuthorNotFound      = ErrNotFound
	ErrAuthorAlreadyExists = errors.New("author with this name already exists")
	ErrAuthorHasBooks      = errors.New("author has associated books and cannot be deleted")
)

// AuthorRepository handles author database operations
type AuthorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAuthorRepository creates a new AuthorRepository
func NewAuthorRepository(db *pgxpool.Pool) *AuthorRepository {
	return &AuthorRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create creates a new author
func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	exists, err := r.ExistsByName(ctx, author.FirstName, author.LastName, 0)
	if err != nil {
		return err
	}
	if exists {
		return ErrAuthorAlreadyExists
	}

	sql, args, err := r.sb.Insert("authors").
		Columns("first_name", "last_name").
		Values(author.FirstName, author.LastName).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create author query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&author.ID); err != nil {
		return fmt.Errorf("error creating author: %w", err)
	}

	return nil
}

// ExistsByName checks for another author with the same name pair
func (r *AuthorRepository) ExistsByName(ctx context.Context, firstName, lastName string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM authors WHERE first_name = $1 AND last_name = $2 AND id != $3)`,
		firstName, lastName, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking author existence: %w", err)
	}
	return exists, nil
}

// GetByID retrieves an author by ID
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	sql, args, err := r.sb.Select("a.id", "a.first_name", "a.last_name", "COUNT(b.id)").
		From("authors a").
		LeftJoin("books b ON b.author_id = a.id").
		Where(squirrel.Eq{"a.id": id}).
		GroupBy("a.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get author query: %w", err)
	}

	author := &models.Author{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&author.ID, &author.FirstName, &author.LastName, &author.NoOfBooks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("error getting author by id: %w", err)
	}

	return author, nil
}

// GetAll retrieves all authors with their book counts
func (r *AuthorRepository) GetAll(ctx context.Context) ([]*models.Author, error) {
	sql, args, err := r.sb.Select("a.id", "a.first_name", "a.last_name", "COUNT(b.id)").
		From("authors a").
		LeftJoin("books b ON b.author_id = a.id").
		GroupBy("a.id").
		OrderBy("a.last_name ASC", "a.first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all authors query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying authors: %w", err)
	}
	defer rows.Close()

	authors := []*models.Author{}
	for rows.Next() {
		author := &models.Author{}
		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &author.NoOfBooks); err != nil {
			return nil, fmt.Errorf("error scanning author row: %w", err)
		}
		authors = append(authors, author)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return authors, nil
}

// Update applies author field changes
func (r *AuthorRepository) Update(ctx context.Context, author *models.Author) error {
	exists, err := r.ExistsByName(ctx, author.FirstName, author.LastName, author.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAuthorAlreadyExists
	}

	sql, args, err := r.sb.Update("authors").
		Set("first_name", author.FirstName).
		Set("last_name", author.LastName).
		Where(squirrel.Eq{"id": author.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update author query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating author: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAuthorNotFound
	}

	return nil
}

// Delete deletes an author unless books still reference them
func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	var hasBooks bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM books WHERE author_id = $1)`,
		id).Scan(&hasBooks)
	if err != nil {
		return fmt.Errorf("error checking author books: %w", err)
	}
	if hasBooks {
		return ErrAuthorHasBooks
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting author: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrAuthorNotFound
	}

	return nil
}
