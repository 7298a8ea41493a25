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
	"github.com/chidi/libman/internal/pkg/auth"
	"github.com/chidi/libman/internal/pkg/idcode"
)

// StudentService handles student-related operations. A student is a
// user account plus a student row, created and deleted together.
type StudentService struct {
	studentRepo    *repositories.StudentRepository
	userRepo       *repositories.UserRepository
	departmentRepo *repositories.DepartmentRepository
	loanRepo       *repositories.LoanRepository
	database       *db.PostgresDB
	encoder        *idcode.Encoder
	logger         zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(
	studentRepo *repositories.StudentRepository,
	userRepo *repositories.UserRepository,
	departmentRepo *repositories.DepartmentRepository,
	loanRepo *repositories.LoanRepository,
	database *db.PostgresDB,
	encoder *idcode.Encoder,
	logger zerolog.Logger,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		loanRepo:       loanRepo,
		database:       database,
		encoder:        encoder,
		logger:         logger,
	}
}

func studentToResponse(student *models.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:           student.ID,
		UserID:       student.UserID,
		MatricNumber: student.MatricNumber,
		Level:        int(student.Level),
		DepartmentID: student.DepartmentID,
		Bio:          student.Bio,
	}
	if student.User != nil {
		resp.FirstName = student.User.FirstName
		resp.LastName = student.User.LastName
		resp.Email = student.User.Email
		resp.CodeImagePath = idcode.StudentImagePath(student.User.FirstName, student.User.LastName)
	}
	if student.Department != nil {
		resp.DepartmentName = student.Department.Name
	}
	return resp
}

func loanToResponse(loan *models.Loan, now time.Time) dto.LoanResponse {
	resp := dto.LoanResponse{
		ID:            loan.ID,
		BookID:        loan.BookID,
		StudentID:     loan.StudentID,
		Returned:      loan.Returned,
		BorrowedAt:    loan.BorrowedAt.Format(time.RFC3339),
		DueAt:         loan.DueAt.Format(time.RFC3339),
		RemainingDays: loan.RemainingDays(now),
	}
	if loan.Book != nil {
		resp.BookTitle = loan.Book.Title
	}
	if loan.Student != nil {
		resp.MatricNumber = loan.Student.MatricNumber
	}
	return resp
}

// partitionLoans splits a loan history into outstanding and returned
// views, preserving the repository's newest-first order.
func partitionLoans(loans []*models.Loan, now time.Time) (borrowed, returned []dto.LoanResponse) {
	for _, loan := range loans {
		view := loanToResponse(loan, now)
		if loan.Returned {
			returned = append(returned, view)
		} else {
			borrowed = append(borrowed, view)
		}
	}
	return borrowed, returned
}

func (s *StudentService) studentRecord(student *models.Student) idcode.StudentRecord {
	record := idcode.StudentRecord{
		Level:        int(student.Level),
		MatricNumber: student.MatricNumber,
	}
	if student.User != nil {
		record.UserID = student.UserID
		record.Name = student.User.FullName()
		record.Email = student.User.Email
	}
	return record
}

// CreateStudent registers a user account and student row in one
// transaction and renders the student's identifier image. The initial
// password is the matric number; students change it on first login.
func (s *StudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	level := models.StudentLevel(req.Level)
	if !level.IsValid() {
		return nil, apperrors.ErrInvalidStudentLevel
	}

	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	matric := strings.ToLower(strings.TrimSpace(req.MatricNumber))
	if matric == "" {
		return nil, fmt.Errorf("%w: matric number cannot be empty", apperrors.ErrValidationFailed)
	}

	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error checking department: %w", err)
	}

	emailTaken, err := s.userRepo.EmailExists(ctx, emailAddr, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if emailTaken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	matricTaken, err := s.studentRepo.MatricExists(ctx, matric, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking matric number: %w", err)
	}
	if matricTaken {
		return nil, apperrors.ErrMatricAlreadyExists
	}

	hash, err := auth.HashPassword(matric)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hash,
		FirstName: strings.ToLower(strings.TrimSpace(req.FirstName)),
		LastName:  strings.ToLower(strings.TrimSpace(req.LastName)),
		RoleType:  models.RoleStudent,
	}
	student := &models.Student{
		MatricNumber: matric,
		Level:        level,
		DepartmentID: req.DepartmentID,
		Bio:          req.Bio,
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.userRepo.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		student.UserID = user.ID
		return s.studentRepo.CreateTx(ctx, tx, student)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if errors.Is(err, repositories.ErrMatricAlreadyExists) {
			return nil, apperrors.ErrMatricAlreadyExists
		}
		return nil, fmt.Errorf("error creating student: %w", err)
	}

	student.User = user

	if _, err := s.encoder.WriteStudent(user.FirstName, user.LastName, s.studentRecord(student)); err != nil {
		s.logger.Error().Err(err).Int64("studentId", student.ID).Msg("Failed to write student identifier image")
	}

	resp, err := s.GetStudentByID(ctx, student.ID)
	if err != nil {
		return studentToResponse(student), nil
	}
	return resp, nil
}

// GetStudentByID retrieves a student with their loans partitioned into
// borrowed (outstanding) and returned
func (s *StudentService) GetStudentByID(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	resp := studentToResponse(student)

	loans, err := s.loanRepo.GetByStudentID(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving student loans: %w", err)
	}

	resp.Borrowed, resp.Returned = partitionLoans(loans, time.Now())

	return resp, nil
}

// GetAllStudents retrieves all students
func (s *StudentService) GetAllStudents(ctx context.Context) ([]*dto.StudentResponse, error) {
	students, err := s.studentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving students: %w", err)
	}

	responses := make([]*dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, studentToResponse(student))
	}
	return responses, nil
}

// UpdateStudent applies the allow-listed fields of req to the student
// and their user account. A name change moves the identifier image to
// the path derived from the new full name.
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	user := student.User
	oldImagePath := idcode.StudentImagePath(user.FirstName, user.LastName)
	userChanged := false
	studentChanged := false
	recordChanged := false

	if req.FirstName != nil {
		user.FirstName = strings.ToLower(strings.TrimSpace(*req.FirstName))
		userChanged = true
		recordChanged = true
	}
	if req.LastName != nil {
		user.LastName = strings.ToLower(strings.TrimSpace(*req.LastName))
		userChanged = true
		recordChanged = true
	}
	if req.Email != nil {
		emailAddr := strings.ToLower(strings.TrimSpace(*req.Email))
		taken, err := s.userRepo.EmailExists(ctx, emailAddr, user.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		user.Email = emailAddr
		userChanged = true
		recordChanged = true
	}
	if req.MatricNumber != nil {
		matric := strings.ToLower(strings.TrimSpace(*req.MatricNumber))
		if matric == "" {
			return nil, fmt.Errorf("%w: matric number cannot be empty", apperrors.ErrValidationFailed)
		}
		taken, err := s.studentRepo.MatricExists(ctx, matric, student.ID)
		if err != nil {
			return nil, fmt.Errorf("error checking matric number: %w", err)
		}
		if taken {
			return nil, apperrors.ErrMatricAlreadyExists
		}
		student.MatricNumber = matric
		studentChanged = true
		recordChanged = true
	}
	if req.Level != nil {
		level := models.StudentLevel(*req.Level)
		if !level.IsValid() {
			return nil, apperrors.ErrInvalidStudentLevel
		}
		student.Level = level
		studentChanged = true
		recordChanged = true
	}
	if req.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, repositories.ErrDepartmentNotFound) {
				return nil, apperrors.ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("error checking department: %w", err)
		}
		student.DepartmentID = *req.DepartmentID
		studentChanged = true
	}
	if req.Bio != nil {
		student.Bio = *req.Bio
		studentChanged = true
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if userChanged {
			if err := s.userRepo.UpdateTx(ctx, tx, user); err != nil {
				return err
			}
		}
		if studentChanged {
			return s.studentRepo.UpdateTx(ctx, tx, student)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if errors.Is(err, repositories.ErrMatricAlreadyExists) {
			return nil, apperrors.ErrMatricAlreadyExists
		}
		return nil, fmt.Errorf("error updating student: %w", err)
	}

	if recordChanged {
		_, err := s.encoder.Rename(oldImagePath, func() (string, error) {
			return s.encoder.WriteStudent(user.FirstName, user.LastName, s.studentRecord(student))
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("studentId", student.ID).Msg("Failed to regenerate student identifier image")
		}
	}

	return s.GetStudentByID(ctx, student.ID)
}

// DeleteStudent removes a student, their loans, their user account and
// their identifier image
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error retrieving student: %w", err)
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.studentRepo.DeleteTx(ctx, tx, student); err != nil {
			return err
		}
		return s.userRepo.DeleteTx(ctx, tx, student.UserID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return apperrors.ErrStudentNotFound
		}
		return fmt.Errorf("error deleting student: %w", err)
	}

	imagePath := idcode.StudentImagePath(student.User.FirstName, student.User.LastName)
	if err := s.encoder.Remove(imagePath); err != nil {
		s.logger.Error().Err(err).Int64("studentId", id).Msg("Failed to remove student identifier image")
	}

	return nil
}
