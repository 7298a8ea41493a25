package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/db"
	"github.com/chidi/libman/internal/pkg/apperrors"
	"github.com/chidi/libman/internal/pkg/borrowform"
	"github.com/chidi/libman/internal/pkg/staging"
)

// Narrow store interfaces so the borrowing workflow can be exercised
// without a database.
type borrowBookStore interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*models.Book, error)
	GetByTitle(ctx context.Context, title string) (*models.Book, error)
	DecrementStockTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error)
	DecrementStock(ctx context.Context, id int64) (bool, error)
	IncrementStock(ctx context.Context, id int64) error
}

type borrowStudentStore interface {
	GetByMatricNumber(ctx context.Context, matric string) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type borrowLoanStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, loan *models.Loan) error
	GetByID(ctx context.Context, id int64) (*models.Loan, error)
	SetReturned(ctx context.Context, id int64, returned bool) error
}

type txRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

type selectionStager interface {
	Stage(ctx context.Context, staged staging.StagedSelection) (string, error)
	Consume(ctx context.Context, token string) (*staging.StagedSelection, error)
	Peek(ctx context.Context, token string) (*staging.StagedSelection, error)
}

// BorrowService runs the two-step borrowing workflow: a selection is
// decoded and staged under a one-time confirmation token, then a
// confirmation commits every resulting loan in a single transaction.
type BorrowService struct {
	bookStore    borrowBookStore
	studentStore borrowStudentStore
	loanStore    borrowLoanStore
	runner       txRunner
	stager       selectionStager
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBorrowService creates a new borrow service instance
func NewBorrowService(
	bookRepo *repositories.BookRepository,
	studentRepo *repositories.StudentRepository,
	loanRepo *repositories.LoanRepository,
	database *db.PostgresDB,
	stager *staging.Stager,
	logger zerolog.Logger,
) *BorrowService {
	return &BorrowService{
		bookStore:    bookRepo,
		studentStore: studentRepo,
		loanStore:    loanRepo,
		runner:       database,
		stager:       stager,
		logger:       logger,
		now:          time.Now,
	}
}

// Stage decodes the selection form, stores it under a confirmation
// token and returns a preview of what was understood. Matric numbers
// that resolve to nobody show up in NotFound; they are kept in the
// staged selection and skipped again at confirmation time.
func (s *BorrowService) Stage(ctx context.Context, stagedBy int64, req *dto.StageBorrowRequest) (*dto.StageBorrowResponse, error) {
	selections := borrowform.Decode(req.Form)
	if len(selections) == 0 {
		return nil, apperrors.ErrEmptySelection
	}

	resp, err := s.preview(ctx, selections)
	if err != nil {
		return nil, err
	}

	token, err := s.stager.Stage(ctx, staging.StagedSelection{
		Selections: selections,
		StagedBy:   stagedBy,
		StagedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("error staging selection: %w", err)
	}

	resp.ConfirmationToken = token
	return resp, nil
}

// PeekStaged re-renders the preview for a still-staged selection
// without consuming the token, so the confirmation page can be
// refreshed before committing.
func (s *BorrowService) PeekStaged(ctx context.Context, token string) (*dto.StageBorrowResponse, error) {
	staged, err := s.stager.Peek(ctx, token)
	if err != nil {
		if errors.Is(err, staging.ErrNoStagedSelection) {
			return nil, apperrors.ErrNoStagedSelection
		}
		return nil, fmt.Errorf("error reading staged selection: %w", err)
	}

	resp, err := s.preview(ctx, staged.Selections)
	if err != nil {
		return nil, err
	}

	resp.ConfirmationToken = token
	return resp, nil
}

// preview resolves a decoded selection into the books and students it
// names. Matric numbers that resolve to nobody land in NotFound.
func (s *BorrowService) preview(ctx context.Context, selections []borrowform.Selection) (*dto.StageBorrowResponse, error) {
	resp := &dto.StageBorrowResponse{}
	seenMatrics := map[string]bool{}

	for _, sel := range selections {
		bookID, err := strconv.ParseInt(sel.BookID, 10, 64)
		if err != nil {
			return nil, apperrors.ErrBookNotFound
		}

		book, err := s.bookStore.GetByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, repositories.ErrBookNotFound) {
				return nil, apperrors.ErrBookNotFound
			}
			return nil, fmt.Errorf("error retrieving book: %w", err)
		}
		resp.Books = append(resp.Books, *bookToResponse(book))

		for _, matric := range sel.MatricNumbers {
			if seenMatrics[matric] {
				continue
			}
			seenMatrics[matric] = true

			student, err := s.studentStore.GetByMatricNumber(ctx, matric)
			if err != nil {
				if errors.Is(err, repositories.ErrStudentNotFound) {
					resp.NotFound = append(resp.NotFound, matric)
					continue
				}
				return nil, fmt.Errorf("error retrieving student: %w", err)
			}
			resp.Students = append(resp.Students, *studentToResponse(student))
		}
	}

	return resp, nil
}

type borrowEntry struct {
	bookID int64
	matric string
}

// dedupe collapses repeated (book, matric) pairs within and across
// selections, keeping first-occurrence order. A book id that is not an
// integer cannot match any record and fails the whole request.
func dedupeSelections(selections []borrowform.Selection) ([]borrowEntry, error) {
	seen := map[borrowEntry]bool{}
	entries := []borrowEntry{}
	for _, sel := range selections {
		bookID, err := strconv.ParseInt(sel.BookID, 10, 64)
		if err != nil {
			return nil, apperrors.ErrBookNotFound
		}
		for _, matric := range sel.MatricNumbers {
			entry := borrowEntry{bookID: bookID, matric: matric}
			if seen[entry] {
				continue
			}
			seen[entry] = true
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Confirm consumes the staged selection and commits its loans. The
// whole batch runs in one transaction: an unknown book id aborts
// everything, while an unknown matric number or an out-of-stock book
// only marks its own entry. A consumed token cannot be replayed.
func (s *BorrowService) Confirm(ctx context.Context, req *dto.ConfirmBorrowRequest) (*dto.ConfirmBorrowResponse, error) {
	staged, err := s.stager.Consume(ctx, req.ConfirmationToken)
	if err != nil {
		if errors.Is(err, staging.ErrNoStagedSelection) {
			return nil, apperrors.ErrNoStagedSelection
		}
		return nil, fmt.Errorf("error consuming staged selection: %w", err)
	}

	entries, err := dedupeSelections(staged.Selections)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.ErrNoStudentsSelected
	}

	borrowedAt := s.now()
	outcomes := make([]dto.BorrowOutcome, 0, len(entries))

	err = s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, entry := range entries {
			book, err := s.bookStore.GetByIDTx(ctx, tx, entry.bookID)
			if err != nil {
				if errors.Is(err, repositories.ErrBookNotFound) {
					return apperrors.ErrBookNotFound
				}
				return fmt.Errorf("error retrieving book: %w", err)
			}

			outcome := dto.BorrowOutcome{
				BookID:       entry.bookID,
				BookTitle:    book.Title,
				MatricNumber: entry.matric,
			}

			student, err := s.studentStore.GetByMatricNumber(ctx, entry.matric)
			if err != nil {
				if errors.Is(err, repositories.ErrStudentNotFound) {
					outcome.Status = dto.BorrowOutcomeSkipped
					outcomes = append(outcomes, outcome)
					continue
				}
				return fmt.Errorf("error retrieving student: %w", err)
			}

			decremented, err := s.bookStore.DecrementStockTx(ctx, tx, book.ID)
			if err != nil {
				return fmt.Errorf("error decrementing stock: %w", err)
			}
			if !decremented {
				outcome.Status = dto.BorrowOutcomeOutOfStock
				outcomes = append(outcomes, outcome)
				continue
			}

			loan := &models.Loan{
				BookID:     book.ID,
				StudentID:  student.ID,
				BorrowedAt: borrowedAt,
				DueAt:      book.DueDate(borrowedAt),
			}
			if err := s.loanStore.CreateTx(ctx, tx, loan); err != nil {
				return fmt.Errorf("error creating loan: %w", err)
			}

			outcome.Status = dto.BorrowOutcomeBorrowed
			outcome.DueAt = loan.DueAt.Format(time.RFC3339)
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("stagedBy", staged.StagedBy).Int("entries", len(outcomes)).Msg("Borrow confirmation committed")

	return &dto.ConfirmBorrowResponse{Outcomes: outcomes}, nil
}

// BorrowByCode is the single-pair shortcut for scanned identifier
// codes: one student borrowing one book, committed immediately.
func (s *BorrowService) BorrowByCode(ctx context.Context, req *dto.QRBorrowRequest) (*dto.BorrowOutcome, error) {
	student, err := s.studentStore.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	book, err := s.bookStore.GetByTitle(ctx, req.BookTitle)
	if err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return nil, apperrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("error retrieving book: %w", err)
	}

	borrowedAt := s.now()
	loan := &models.Loan{
		BookID:     book.ID,
		StudentID:  student.ID,
		BorrowedAt: borrowedAt,
		DueAt:      book.DueDate(borrowedAt),
	}

	err = s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		decremented, err := s.bookStore.DecrementStockTx(ctx, tx, book.ID)
		if err != nil {
			return fmt.Errorf("error decrementing stock: %w", err)
		}
		if !decremented {
			return apperrors.ErrOutOfStock
		}
		return s.loanStore.CreateTx(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	return &dto.BorrowOutcome{
		BookID:       book.ID,
		BookTitle:    book.Title,
		MatricNumber: student.MatricNumber,
		Status:       dto.BorrowOutcomeBorrowed,
		DueAt:        loan.DueAt.Format(time.RFC3339),
	}, nil
}

// ReturnLoan marks a loan returned and puts the copy back on the shelf.
// A loan that is already returned is left alone.
func (s *BorrowService) ReturnLoan(ctx context.Context, loanID int64) error {
	loan, err := s.loanStore.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repositories.ErrLoanNotFound) {
			return apperrors.ErrLoanNotFound
		}
		return fmt.Errorf("error retrieving loan: %w", err)
	}
	if loan.Returned {
		return nil
	}

	if err := s.loanStore.SetReturned(ctx, loanID, true); err != nil {
		return fmt.Errorf("error marking loan returned: %w", err)
	}
	if err := s.bookStore.IncrementStock(ctx, loan.BookID); err != nil {
		return fmt.Errorf("error restoring stock: %w", err)
	}
	return nil
}

// UnreturnLoan reverts a return, taking a copy back off the shelf. If
// no copy is left the revert is refused.
func (s *BorrowService) UnreturnLoan(ctx context.Context, loanID int64) error {
	loan, err := s.loanStore.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repositories.ErrLoanNotFound) {
			return apperrors.ErrLoanNotFound
		}
		return fmt.Errorf("error retrieving loan: %w", err)
	}
	if !loan.Returned {
		return nil
	}

	decremented, err := s.bookStore.DecrementStock(ctx, loan.BookID)
	if err != nil {
		return fmt.Errorf("error taking stock: %w", err)
	}
	if !decremented {
		return apperrors.ErrOutOfStock
	}

	if err := s.loanStore.SetReturned(ctx, loanID, false); err != nil {
		return fmt.Errorf("error reverting loan return: %w", err)
	}
	return nil
}
