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

// Book error types
var (
	ErrBookNotFound       = ErrNotFound
	ErrTitleAlreadyExists = errors.New("book with this title already exists")
	ErrOutOfStock         = errors.New("book is out of stock")
)

const bookColumns = `b.id, b.title, b.author_id, b.category_id, b.stock, b.created_at,
	a.first_name, a.last_name, c.name,
	(SELECT COUNT(*) FROM loans l WHERE l.book_id = b.id AND l.returned = FALSE)`

// BookRepository handles book database operations
type BookRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(db *pgxpool.Pool) *BookRepository {
	return &BookRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanBook(row pgx.Row) (*models.Book, error) {
	book := &models.Book{
		Author:   &models.Author{},
		Category: &models.Category{},
	}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.AuthorID,
		&book.CategoryID,
		&book.Stock,
		&book.CreatedAt,
		&book.Author.FirstName,
		&book.Author.LastName,
		&book.Category.Name,
		&book.NoBorrowed,
	)
	if err != nil {
		return nil, err
	}
	book.Author.ID = book.AuthorID
	book.Category.ID = book.CategoryID
	return book, nil
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	sql, args, err := r.sb.Insert("books").
		Columns("title", "author_id", "category_id", "stock").
		Values(book.Title, book.AuthorID, book.CategoryID, book.Stock).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create book query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&book.ID, &book.CreatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return ErrTitleAlreadyExists
		}
		return fmt.Errorf("error creating book: %w", err)
	}

	return nil
}

// GetByID retrieves a book with author, category and borrow count
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns).
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Join("categories c ON c.id = b.category_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book query: %w", err)
	}

	book, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("error getting book by id: %w", err)
	}

	return book, nil
}

// GetByIDTx retrieves a book within an existing transaction
func (r *BookRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns).
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Join("categories c ON c.id = b.category_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book query: %w", err)
	}

	book, err := scanBook(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("error getting book by id: %w", err)
	}

	return book, nil
}

// GetByTitle retrieves a book by its title (stored lower-cased)
func (r *BookRepository) GetByTitle(ctx context.Context, title string) (*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns).
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Join("categories c ON c.id = b.category_id").
		Where(squirrel.Eq{"b.title": title}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get book by title query: %w", err)
	}

	book, err := scanBook(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("error getting book by title: %w", err)
	}

	return book, nil
}

// GetAll retrieves all books with authors, categories and borrow counts
func (r *BookRepository) GetAll(ctx context.Context) ([]*models.Book, error) {
	sql, args, err := r.sb.Select(bookColumns).
		From("books b").
		Join("authors a ON a.id = b.author_id").
		Join("categories c ON c.id = b.category_id").
		OrderBy("b.title ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all books query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying books: %w", err)
	}
	defer rows.Close()

	books := []*models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning book row: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return books, nil
}

// TitleExists checks for another book with the same title
func (r *BookRepository) TitleExists(ctx context.Context, title string, excludeBookID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM books WHERE title = $1 AND id != $2)`,
		title, excludeBookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking title existence: %w", err)
	}
	return exists, nil
}

// Update applies book field changes
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	sql, args, err := r.sb.Update("books").
		Set("title", book.Title).
		Set("author_id", book.AuthorID).
		Set("category_id", book.CategoryID).
		Set("stock", book.Stock).
		Where(squirrel.Eq{"id": book.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update book query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrTitleAlreadyExists
		}
		return fmt.Errorf("error updating book: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DeleteTx removes a book and its loans within a transaction
func (r *BookRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM loans WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting book loans: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting book: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// DecrementStockTx takes one copy off the shelf. The WHERE guard keeps
// stock from ever going negative under concurrent borrows; a false
// return means the book is out of stock.
func (r *BookRepository) DecrementStockTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE books SET stock = stock - 1 WHERE id = $1 AND stock > 0`, id)
	if err != nil {
		return false, fmt.Errorf("error decrementing book stock: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// IncrementStock puts one copy back on the shelf
func (r *BookRepository) IncrementStock(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE books SET stock = stock + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing book stock: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DecrementStock takes one copy off the shelf outside a transaction,
// with the same out-of-stock guard as DecrementStockTx.
func (r *BookRepository) DecrementStock(ctx context.Context, id int64) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE books SET stock = stock - 1 WHERE id = $1 AND stock > 0`, id)
	if err != nil {
		return false, fmt.Errorf("error decrementing book stock: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
