package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chidi/libman/internal/app/models/dto"
	"github.com/chidi/libman/internal/pkg/apperrors"
	"github.com/chidi/libman/internal/pkg/logger"
)

// HandleAPIError maps service errors to coded JSON responses
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrResetTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Password reset token expired")
	case errors.Is(err, apperrors.ErrResetTokenInvalid):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid password reset token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrBookNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Book not found")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrAuthorNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Author not found")
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Category not found")
	case errors.Is(err, apperrors.ErrDepartmentNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Department not found")
	case errors.Is(err, apperrors.ErrLoanNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Loan not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrNoStagedSelection):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "No staged selection for this token")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, messageOr(err, "Resource not found"))

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrMatricAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Matric number already exists")
	case errors.Is(err, apperrors.ErrTitleAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Book with this title already exists")
	case errors.Is(err, apperrors.ErrAuthorAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Author already exists")
	case errors.Is(err, apperrors.ErrCategoryNameExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Category with this name already exists")
	case errors.Is(err, apperrors.ErrDepartmentNameExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Department with this name already exists")
	case errors.Is(err, apperrors.ErrOutOfStock):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Book is out of stock")
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, messageOr(err, "Resource already exists"))

	case errors.Is(err, apperrors.ErrInvalidStudentLevel):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Student level must be one of 100, 200, 300, 400, 500")
	case errors.Is(err, apperrors.ErrEmptySelection):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Selection contains no books")
	case errors.Is(err, apperrors.ErrNoStudentsSelected):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Selection contains no students")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, messageOr(err, "Bad request"))

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// messageOr surfaces the CustomError message when one wraps the
// sentinel, falling back to the generic text.
func messageOr(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.APIResponse{
		Error:     dto.NewErrorDetail(code, message),
		Timestamp: time.Now(),
	})
}
