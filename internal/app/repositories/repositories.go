package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is the shared sentinel for missing rows; entity
// repositories alias it with their own names.
var ErrNotFound = errors.New("record not found")

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	DepartmentRepository *DepartmentRepository
	StudentRepository    *StudentRepository
	AuthorRepository     *AuthorRepository
	CategoryRepository   *CategoryRepository
	BookRepository       *BookRepository
	LoanRepository       *LoanRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		DepartmentRepository: NewDepartmentRepository(db),
		StudentRepository:    NewStudentRepository(db),
		AuthorRepository:     NewAuthorRepository(db),
		CategoryRepository:   NewCategoryRepository(db),
		BookRepository:       NewBookRepository(db),
		LoanRepository:       NewLoanRepository(db),
	}
}

// statementBuilder returns a squirrel builder with postgres placeholders
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
