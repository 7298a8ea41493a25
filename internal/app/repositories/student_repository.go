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

// Student error types
var (
	ErrStudentNotFound     = ErrNotFound
	ErrMatricAlreadyExists = errors.New("student with this matric number already exists")
)

const studentColumns = `s.id, s.user_id, s.matric_number, s.level, s.department_id, s.bio,
	u.email, u.first_name, u.last_name, u.role_type, u.is_verified, u.created_at,
	d.name`

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{
		User:       &models.User{},
		Department: &models.Department{},
	}
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.MatricNumber,
		&student.Level,
		&student.DepartmentID,
		&student.Bio,
		&student.User.Email,
		&student.User.FirstName,
		&student.User.LastName,
		&student.User.RoleType,
		&student.User.IsVerified,
		&student.User.CreatedAt,
		&student.Department.Name,
	)
	if err != nil {
		return nil, err
	}
	student.User.ID = student.UserID
	student.Department.ID = student.DepartmentID
	return student, nil
}

// CreateTx inserts a student row within an existing transaction
func (r *StudentRepository) CreateTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("user_id", "matric_number", "level", "department_id", "bio").
		Values(student.UserID, student.MatricNumber, student.Level, student.DepartmentID, student.Bio).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := tx.QueryRow(ctx, sql, args...).Scan(&student.ID); err != nil {
		if isDuplicateKeyError(err) {
			return ErrMatricAlreadyExists
		}
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student with its user account and department
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students s").
		Join("users u ON u.id = s.user_id").
		Join("departments d ON d.id = s.department_id").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by id: %w", err)
	}

	return student, nil
}

// GetByMatricNumber retrieves a student by matric number (stored lower-cased)
func (r *StudentRepository) GetByMatricNumber(ctx context.Context, matric string) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students s").
		Join("users u ON u.id = s.user_id").
		Join("departments d ON d.id = s.department_id").
		Where(squirrel.Eq{"s.matric_number": matric}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student by matric query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by matric number: %w", err)
	}

	return student, nil
}

// GetByUserID retrieves a student by the ID of their user account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students s").
		Join("users u ON u.id = s.user_id").
		Join("departments d ON d.id = s.department_id").
		Where(squirrel.Eq{"s.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student by user query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error getting student by user id: %w", err)
	}

	return student, nil
}

// GetAll retrieves all students with their user accounts and departments
func (r *StudentRepository) GetAll(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns).
		From("students s").
		Join("users u ON u.id = s.user_id").
		Join("departments d ON d.id = s.department_id").
		OrderBy("s.matric_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// MatricExists checks for another student with the same matric number
func (r *StudentRepository) MatricExists(ctx context.Context, matric string, excludeStudentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE matric_number = $1 AND id != $2)`,
		matric, excludeStudentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking matric number existence: %w", err)
	}
	return exists, nil
}

// UpdateTx applies student field changes within an existing transaction
func (r *StudentRepository) UpdateTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		Set("matric_number", student.MatricNumber).
		Set("level", student.Level).
		Set("department_id", student.DepartmentID).
		Set("bio", student.Bio).
		Where(squirrel.Eq{"id": student.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrMatricAlreadyExists
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}

// DeleteTx removes a student and its loans within a transaction. The
// caller removes the backing user account through the user repository.
func (r *StudentRepository) DeleteTx(ctx context.Context, tx pgx.Tx, student *models.Student) error {
	if _, err := tx.Exec(ctx, `DELETE FROM loans WHERE student_id = $1`, student.ID); err != nil {
		return fmt.Errorf("error deleting student loans: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, student.ID)
	if err != nil {
		return fmt.Errorf("error deleting student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}
