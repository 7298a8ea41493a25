package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi/libman/internal/app/models"
)

func testJWTService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "jwt-secret-used-only-in-tests",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "libman.test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	s := testJWTService(time.Hour)
	user := &models.User{ID: 7, Email: "lib@library.edu", RoleType: models.RoleLibrarian}

	access, refresh, expiresIn, refreshExpiresIn, err := s.GenerateTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.Equal(t, 3600, expiresIn)
	assert.Equal(t, int((720 * time.Hour).Seconds()), refreshExpiresIn)

	claims, err := s.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "lib@library.edu", claims.Email)
	assert.Equal(t, string(models.RoleLibrarian), claims.RoleType)
}

func TestValidateTokenExpired(t *testing.T) {
	s := testJWTService(-time.Minute)
	user := &models.User{ID: 1, Email: "x@library.edu", RoleType: models.RoleAdmin}

	access, _, _, _, err := s.GenerateTokenPair(user)
	require.NoError(t, err)

	_, err = s.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	s := testJWTService(time.Hour)
	user := &models.User{ID: 1, Email: "x@library.edu", RoleType: models.RoleAdmin}

	access, _, _, _, err := s.GenerateTokenPair(user)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another-secret", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
