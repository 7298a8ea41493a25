package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/app/repositories"
	"github.com/chidi/libman/internal/pkg/apperrors"
	"github.com/chidi/libman/internal/pkg/auth"
	"github.com/chidi/libman/internal/pkg/email"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    *repositories.UserRepository
	tokenRepo   *repositories.TokenRepository
	jwtService  *auth.JWTService
	resetCipher *auth.ResetTokenCipher
	mailer      email.EmailService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	jwtService *auth.JWTService,
	resetCipher *auth.ResetTokenCipher,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		jwtService:  jwtService,
		resetCipher: resetCipher,
		mailer:      mailer,
		logger:      logger,
	}
}

// validatePassword checks if a password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", apperrors.ErrValidationFailed)
	}

	hasLetter := false
	hasDigit := false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: password must contain at least one letter", apperrors.ErrValidationFailed)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", apperrors.ErrValidationFailed)
	}

	return nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token pair: %w", err)
	}

	if err := s.tokenRepo.Store(ctx, user.ID, refreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	s.logger.Info().Int64("userId", user.ID).Msg("User logged in")

	return &dto.LoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}

// RefreshToken exchanges a stored refresh token for a new pair
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	userID, err := s.tokenRepo.Lookup(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error looking up refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token pair: %w", err)
	}

	if err := s.tokenRepo.Store(ctx, user.ID, refreshToken, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &dto.LoginResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}

// Logout revokes a user's stored refresh token
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.tokenRepo.Delete(ctx, userID); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// ForgotPassword issues an encrypted reset token and mails it to the
// account. An unknown email gets the same nil response, so the endpoint
// does not leak which addresses have accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.logger.Info().Str("email", emailAddr).Msg("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("error retrieving user: %w", err)
	}

	token, err := s.resetCipher.Issue(user.Email, time.Now())
	if err != nil {
		return fmt.Errorf("error issuing reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName(), token); err != nil {
		return fmt.Errorf("error sending reset email: %w", err)
	}

	s.logger.Info().Int64("userId", user.ID).Msg("Password reset email sent")
	return nil
}

// ResetPassword opens the reset token and updates the account password
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := s.validatePassword(req.NewPassword); err != nil {
		return err
	}

	payload, err := s.resetCipher.Open(req.Token, time.Now())
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return apperrors.ErrResetTokenExpired
		}
		return apperrors.ErrResetTokenInvalid
	}

	user, err := s.userRepo.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrResetTokenInvalid
		}
		return fmt.Errorf("error retrieving user: %w", err)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	// Stale refresh tokens die with the old password.
	if err := s.tokenRepo.Delete(ctx, user.ID); err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		s.logger.Warn().Err(err).Int64("userId", user.ID).Msg("Failed to revoke refresh token after password reset")
	}

	s.logger.Info().Int64("userId", user.ID).Msg("Password reset completed")
	return nil
}
