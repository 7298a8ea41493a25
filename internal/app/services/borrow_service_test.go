package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/db"
	"github.com/chidi/libman/internal/pkg/apperrors"
	"github.com/chidi/libman/internal/pkg/borrowform"
	"github.com/chidi/libman/internal/pkg/staging"
)

type fakeBookStore struct {
	books map[int64]*models.Book
}

func (f *fakeBookStore) GetByID(_ context.Context, id int64) (*models.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return nil, repositories.ErrBookNotFound
	}
	return book, nil
}

func (f *fakeBookStore) GetByIDTx(ctx context.Context, _ pgx.Tx, id int64) (*models.Book, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBookStore) GetByTitle(_ context.Context, title string) (*models.Book, error) {
	for _, book := range f.books {
		if book.Title == title {
			return book, nil
		}
	}
	return nil, repositories.ErrBookNotFound
}

func (f *fakeBookStore) DecrementStock(_ context.Context, id int64) (bool, error) {
	book, ok := f.books[id]
	if !ok || book.Stock <= 0 {
		return false, nil
	}
	book.Stock--
	return true, nil
}

func (f *fakeBookStore) DecrementStockTx(ctx context.Context, _ pgx.Tx, id int64) (bool, error) {
	return f.DecrementStock(ctx, id)
}

func (f *fakeBookStore) IncrementStock(_ context.Context, id int64) error {
	book, ok := f.books[id]
	if !ok {
		return repositories.ErrBookNotFound
	}
	book.Stock++
	return nil
}

type fakeStudentStore struct {
	students map[string]*models.Student
}

func (f *fakeStudentStore) GetByMatricNumber(_ context.Context, matric string) (*models.Student, error) {
	student, ok := f.students[matric]
	if !ok {
		return nil, repositories.ErrStudentNotFound
	}
	return student, nil
}

func (f *fakeStudentStore) GetByUserID(_ context.Context, userID int64) (*models.Student, error) {
	for _, student := range f.students {
		if student.UserID == userID {
			return student, nil
		}
	}
	return nil, repositories.ErrStudentNotFound
}

type fakeLoanStore struct {
	loans  []*models.Loan
	nextID int64
}

func (f *fakeLoanStore) CreateTx(_ context.Context, _ pgx.Tx, loan *models.Loan) error {
	f.nextID++
	loan.ID = f.nextID
	f.loans = append(f.loans, loan)
	return nil
}

func (f *fakeLoanStore) GetByID(_ context.Context, id int64) (*models.Loan, error) {
	for _, loan := range f.loans {
		if loan.ID == id {
			return loan, nil
		}
	}
	return nil, repositories.ErrLoanNotFound
}

func (f *fakeLoanStore) SetReturned(_ context.Context, id int64, returned bool) error {
	for _, loan := range f.loans {
		if loan.ID == id {
			loan.Returned = returned
			return nil
		}
	}
	return repositories.ErrLoanNotFound
}

type fakeRunner struct{}

func (fakeRunner) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

type fakeStager struct {
	staged map[string]staging.StagedSelection
	next   int
}

func (f *fakeStager) Stage(_ context.Context, staged staging.StagedSelection) (string, error) {
	if f.staged == nil {
		f.staged = map[string]staging.StagedSelection{}
	}
	f.next++
	token := "token-" + string(rune('a'+f.next))
	f.staged[token] = staged
	return token, nil
}

func (f *fakeStager) Consume(_ context.Context, token string) (*staging.StagedSelection, error) {
	staged, ok := f.staged[token]
	if !ok {
		return nil, staging.ErrNoStagedSelection
	}
	delete(f.staged, token)
	return &staged, nil
}

func (f *fakeStager) Peek(_ context.Context, token string) (*staging.StagedSelection, error) {
	staged, ok := f.staged[token]
	if !ok {
		return nil, staging.ErrNoStagedSelection
	}
	return &staged, nil
}

func testBorrowService(books *fakeBookStore, students *fakeStudentStore, loans *fakeLoanStore, stager *fakeStager) *BorrowService {
	return &BorrowService{
		bookStore:    books,
		studentStore: students,
		loanStore:    loans,
		runner:       fakeRunner{},
		stager:       stager,
		logger:       zerolog.Nop(),
		now:          func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func testStudent(id, userID int64, matric string) *models.Student {
	return &models.Student{
		ID:           id,
		UserID:       userID,
		MatricNumber: matric,
		Level:        models.Level300,
		User:         &models.User{ID: userID, FirstName: "ada", LastName: "okafor"},
		Department:   &models.Department{ID: 1, Name: "engineering"},
	}
}

func TestConfirmCommitsLoans(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 3, Author: &models.Author{}, Category: &models.Category{}},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
		"a02": testStudent(2, 20, "a02"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, err := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: []string{"a01", "a02"}}},
	})
	require.NoError(t, err)

	resp, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)

	require.Len(t, resp.Outcomes, 2)
	for _, outcome := range resp.Outcomes {
		assert.Equal(t, dto.BorrowOutcomeBorrowed, outcome.Status)
		assert.Equal(t, "algorithms", outcome.BookTitle)
	}
	assert.Len(t, loans.loans, 2)
	assert.Equal(t, 1, books.books[101].Stock)
}

func TestConfirmDueDateFollowsStock(t *testing.T) {
	// Stock below 10 after staging still prices the loan off the stock
	// seen at commit time: 3 copies means a 6 day period.
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 3},
		202: {ID: 202, Title: "databases", Stock: 12},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{
			{BookID: "101", MatricNumbers: []string{"a01"}},
			{BookID: "202", MatricNumbers: []string{"a01"}},
		},
	})

	_, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)
	require.Len(t, loans.loans, 2)

	scarce, plentiful := loans.loans[0], loans.loans[1]
	assert.Equal(t, 6*24*time.Hour, scarce.DueAt.Sub(scarce.BorrowedAt))
	assert.Equal(t, 10*24*time.Hour, plentiful.DueAt.Sub(plentiful.BorrowedAt))
}

func TestConfirmDeduplicatesEntries(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{
			{BookID: "101", MatricNumbers: []string{"a01", "a01"}},
			{BookID: "101", MatricNumbers: []string{"a01"}},
		},
	})

	resp, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)
	assert.Len(t, resp.Outcomes, 1)
	assert.Len(t, loans.loans, 1)
	assert.Equal(t, 4, books.books[101].Stock)
}

func TestConfirmSkipsUnknownMatric(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: []string{"ghost", "a01"}}},
	})

	resp, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)

	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, dto.BorrowOutcomeSkipped, resp.Outcomes[0].Status)
	assert.Equal(t, "ghost", resp.Outcomes[0].MatricNumber)
	assert.Equal(t, dto.BorrowOutcomeBorrowed, resp.Outcomes[1].Status)
	assert.Len(t, loans.loans, 1)
	assert.Equal(t, 4, books.books[101].Stock)
}

func TestConfirmMarksOutOfStock(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 1},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
		"a02": testStudent(2, 20, "a02"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: []string{"a01", "a02"}}},
	})

	resp, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)

	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, dto.BorrowOutcomeBorrowed, resp.Outcomes[0].Status)
	assert.Equal(t, dto.BorrowOutcomeOutOfStock, resp.Outcomes[1].Status)
	assert.Len(t, loans.loans, 1)
	assert.Equal(t, 0, books.books[101].Stock)
}

func TestConfirmUnknownBookFailsRequest(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "999", MatricNumbers: []string{"a01"}}},
	})

	_, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	assert.ErrorIs(t, err, apperrors.ErrBookNotFound)
}

func TestConfirmTokenSingleUse(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: []string{"a01"}}},
	})

	_, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	assert.ErrorIs(t, err, apperrors.ErrNoStagedSelection)
	assert.Len(t, loans.loans, 1)
}

func TestConfirmRejectsSelectionWithoutStudents(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5},
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, &fakeStudentStore{}, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: nil}},
	})

	_, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	assert.ErrorIs(t, err, apperrors.ErrNoStudentsSelected)
	assert.Empty(t, loans.loans)
}

func TestStagePreviewListsUnknownMatrics(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5, Author: &models.Author{}, Category: &models.Category{}},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	resp, err := svc.Stage(context.Background(), 5, &dto.StageBorrowRequest{Form: map[string]string{
		"101_selected": "on",
		"101_students": "A01, ghost",
	}})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ConfirmationToken)
	require.Len(t, resp.Books, 1)
	require.Len(t, resp.Students, 1)
	assert.Equal(t, []string{"ghost"}, resp.NotFound)
	assert.Empty(t, loans.loans)
}

func TestPeekStagedDoesNotConsume(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 5, Author: &models.Author{}, Category: &models.Category{}},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	stager := &fakeStager{}
	svc := testBorrowService(books, students, loans, stager)

	token, _ := stager.Stage(context.Background(), staging.StagedSelection{
		Selections: []borrowform.Selection{{BookID: "101", MatricNumbers: []string{"a01"}}},
	})

	resp, err := svc.PeekStaged(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, token, resp.ConfirmationToken)
	require.Len(t, resp.Books, 1)
	require.Len(t, resp.Students, 1)
	assert.Empty(t, loans.loans)

	// The selection is still staged and can be committed afterwards.
	confirmed, err := svc.Confirm(context.Background(), &dto.ConfirmBorrowRequest{ConfirmationToken: token})
	require.NoError(t, err)
	require.Len(t, confirmed.Outcomes, 1)

	_, err = svc.PeekStaged(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrNoStagedSelection)
}

func TestStageEmptyFormRejected(t *testing.T) {
	svc := testBorrowService(&fakeBookStore{}, &fakeStudentStore{}, &fakeLoanStore{}, &fakeStager{})

	_, err := svc.Stage(context.Background(), 5, &dto.StageBorrowRequest{Form: map[string]string{}})
	assert.ErrorIs(t, err, apperrors.ErrEmptySelection)
}

func TestBorrowByCode(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 1},
	}}
	students := &fakeStudentStore{students: map[string]*models.Student{
		"a01": testStudent(1, 10, "a01"),
	}}
	loans := &fakeLoanStore{}
	svc := testBorrowService(books, students, loans, &fakeStager{})

	outcome, err := svc.BorrowByCode(context.Background(), &dto.QRBorrowRequest{UserID: 10, BookTitle: "algorithms"})
	require.NoError(t, err)
	assert.Equal(t, dto.BorrowOutcomeBorrowed, outcome.Status)
	assert.Equal(t, "a01", outcome.MatricNumber)
	assert.Len(t, loans.loans, 1)

	_, err = svc.BorrowByCode(context.Background(), &dto.QRBorrowRequest{UserID: 10, BookTitle: "algorithms"})
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
}

func TestReturnLoanRestoresStock(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 0},
	}}
	loans := &fakeLoanStore{loans: []*models.Loan{{ID: 1, BookID: 101}}, nextID: 1}
	svc := testBorrowService(books, &fakeStudentStore{}, loans, &fakeStager{})

	require.NoError(t, svc.ReturnLoan(context.Background(), 1))
	assert.True(t, loans.loans[0].Returned)
	assert.Equal(t, 1, books.books[101].Stock)

	// A second return must not add another copy.
	require.NoError(t, svc.ReturnLoan(context.Background(), 1))
	assert.Equal(t, 1, books.books[101].Stock)
}

func TestUnreturnLoanRefusedWhenOutOfStock(t *testing.T) {
	books := &fakeBookStore{books: map[int64]*models.Book{
		101: {ID: 101, Title: "algorithms", Stock: 0},
	}}
	loans := &fakeLoanStore{loans: []*models.Loan{{ID: 1, BookID: 101, Returned: true}}, nextID: 1}
	svc := testBorrowService(books, &fakeStudentStore{}, loans, &fakeStager{})

	err := svc.UnreturnLoan(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
	assert.True(t, loans.loans[0].Returned)
}
