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

// Loan error types
var ErrLoanNotFound = ErrNotFound

// LoanRepository handles loan database operations
type LoanRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(db *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateTx inserts a loan row within an existing transaction
func (r *LoanRepository) CreateTx(ctx context.Context, tx pgx.Tx, loan *models.Loan) error {
	sql, args, err := r.sb.Insert("loans").
		Columns("book_id", "student_id", "returned", "borrowed_at", "due_at").
		Values(loan.BookID, loan.StudentID, loan.Returned, loan.BorrowedAt, loan.DueAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create loan query: %w", err)
	}

	if err := tx.QueryRow(ctx, sql, args...).Scan(&loan.ID); err != nil {
		return fmt.Errorf("error creating loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	sql, args, err := r.sb.Select("id", "book_id", "student_id", "returned", "borrowed_at", "due_at").
		From("loans").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get loan query: %w", err)
	}

	loan := &models.Loan{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&loan.ID, &loan.BookID, &loan.StudentID, &loan.Returned, &loan.BorrowedAt, &loan.DueAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("error getting loan by id: %w", err)
	}

	return loan, nil
}

// GetByStudentID retrieves a student's loans with book titles, newest first
func (r *LoanRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*models.Loan, error) {
	return r.list(ctx, squirrel.Eq{"l.student_id": studentID})
}

// GetByBookID retrieves a book's loans with borrower matric numbers,
// newest first
func (r *LoanRepository) GetByBookID(ctx context.Context, bookID int64) ([]*models.Loan, error) {
	return r.list(ctx, squirrel.Eq{"l.book_id": bookID})
}

func (r *LoanRepository) list(ctx context.Context, pred squirrel.Eq) ([]*models.Loan, error) {
	sql, args, err := r.sb.Select(
		"l.id", "l.book_id", "l.student_id", "l.returned", "l.borrowed_at", "l.due_at",
		"b.title", "b.stock", "s.matric_number").
		From("loans l").
		Join("books b ON b.id = l.book_id").
		Join("students s ON s.id = l.student_id").
		Where(pred).
		OrderBy("l.borrowed_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list loans query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying loans: %w", err)
	}
	defer rows.Close()

	loans := []*models.Loan{}
	for rows.Next() {
		loan := &models.Loan{Book: &models.Book{}, Student: &models.Student{}}
		err := rows.Scan(
			&loan.ID, &loan.BookID, &loan.StudentID, &loan.Returned, &loan.BorrowedAt, &loan.DueAt,
			&loan.Book.Title, &loan.Book.Stock, &loan.Student.MatricNumber)
		if err != nil {
			return nil, fmt.Errorf("error scanning loan row: %w", err)
		}
		loan.Book.ID = loan.BookID
		loan.Student.ID = loan.StudentID
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return loans, nil
}

// SetReturned flips a loan's returned flag
func (r *LoanRepository) SetReturned(ctx context.Context, id int64, returned bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE loans SET returned = $1 WHERE id = $2`, returned, id)
	if err != nil {
		return fmt.Errorf("error updating loan: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLoanNotFound
	}
	return nil
}
