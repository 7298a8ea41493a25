package seed

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/chidi/libman/internal/app/models"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/pkg/auth"
)

const defaultAdminEmail = "admin@library.edu"

// CreateDefaultData creates the default admin account and a starter
// department if they don't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	departmentRepo := repositories.NewDepartmentRepository(dbPool)
	userRepo := repositories.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	department := &models.Department{Name: "general studies"}
	if err := departmentRepo.Create(ctx, department); err != nil && !errors.Is(err, repositories.ErrDepartmentNameExists) {
		lgr.Error().Err(err).Msg("Error creating default department")
		finalErr = errors.Join(finalErr, err)
	}

	exists, err := userRepo.EmailExists(ctx, defaultAdminEmail, 0)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking default admin account")
		return errors.Join(finalErr, err)
	}
	if exists {
		return finalErr
	}

	password := os.Getenv("LIBMAN_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		lgr.Warn().Msg("LIBMAN_ADMIN_PASSWORD not set, seeding admin with the default password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return errors.Join(finalErr, err)
	}

	admin := &models.User{
		Email:      defaultAdminEmail,
		Password:   hash,
		FirstName:  "library",
		LastName:   "admin",
		RoleType:   models.RoleAdmin,
		IsVerified: true,
	}

	tx, err := dbPool.Begin(ctx)
	if err != nil {
		return errors.Join(finalErr, err)
	}
	defer tx.Rollback(ctx)

	if err := userRepo.CreateTx(ctx, tx, admin); err != nil {
		if errors.Is(err, repositories.ErrEmailAlreadyExists) {
			return finalErr
		}
		lgr.Error().Err(err).Msg("Error creating default admin account")
		return errors.Join(finalErr, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(finalErr, err)
	}

	lgr.Info().Str("email", defaultAdminEmail).Msg("Default admin account created")
	return finalErr
}
