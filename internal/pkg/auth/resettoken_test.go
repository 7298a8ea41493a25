package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResetSecret = "reset-secret-used-only-in-tests"

func TestResetTokenRoundTrip(t *testing.T) {
	c, err := NewResetTokenCipher(testResetSecret, time.Hour)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	token, err := c.Issue("ada@library.edu", now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := c.Open(token, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "ada@library.edu", payload.Email)
	assert.Equal(t, now, payload.IssuedAt.UTC())
	assert.Equal(t, now.Add(time.Hour), payload.ExpireAt.UTC())
}

func TestResetTokenExpired(t *testing.T) {
	c, err := NewResetTokenCipher(testResetSecret, time.Hour)
	require.NoError(t, err)

	now := time.Now()
	token, err := c.Issue("ada@library.edu", now)
	require.NoError(t, err)

	_, err = c.Open(token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestResetTokenWrongKey(t *testing.T) {
	issuer, err := NewResetTokenCipher(testResetSecret, time.Hour)
	require.NoError(t, err)
	other, err := NewResetTokenCipher("a-different-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("ada@library.edu", time.Now())
	require.NoError(t, err)

	_, err = other.Open(token, time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetTokenGarbage(t *testing.T) {
	c, err := NewResetTokenCipher(testResetSecret, time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", "!!!!"} {
		_, err := c.Open(token, time.Now())
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestNewResetTokenCipherEmptySecret(t *testing.T) {
	_, err := NewResetTokenCipher("", time.Hour)
	assert.Error(t, err)
}
