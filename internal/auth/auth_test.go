package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hours-ledger/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(&models.Identity{ID: "u1", Role: models.RoleDeveloper})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleDeveloper, claims.Role)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(&models.Identity{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("one", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.Issue(&models.Identity{ID: "u1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("dev123")
	require.NoError(t, err)
	assert.NotEqual(t, "dev123", hash)
	assert.True(t, CheckPassword(hash, "dev123"))
	assert.False(t, CheckPassword(hash, "dev124"))
}
