package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("", "anything"))
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	mgr, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := mgr.Issue(42, true)
	require.NoError(t, err)

	claims, err := mgr.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.Admin)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	mgr, err := NewTokenManager("test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := mgr.Issue(1, false)
	require.NoError(t, err)

	_, err = mgr.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForged(t *testing.T) {
	issuer, err := NewTokenManager("issuer-secret", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager("other-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(1, false)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}
