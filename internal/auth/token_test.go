package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_Validation(t *testing.T) {
	_, err := NewTokenManager("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("same", "same", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("a", "b", 0, time.Hour)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)

	access, refresh, err := m.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := m.Verify(KindAccess, access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := m.Verify(KindRefresh, refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), refreshClaims.UserID)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestVerify_RejectsWrongKind(t *testing.T) {
	m := newTestManager(t)

	access, refresh, err := m.IssuePair(7)
	require.NoError(t, err)

	// An access token must never pass refresh verification, and vice
	// versa: the kinds are signed with different secrets.
	_, err = m.Verify(KindRefresh, access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(KindAccess, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)
	other, err := NewTokenManager("other-access", "other-refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(KindAccess, 7)
	require.NoError(t, err)

	_, err = m.Verify(KindAccess, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsExpired(t *testing.T) {
	m, err := NewTokenManager("access-secret", "refresh-secret", time.Nanosecond, time.Hour)
	require.NoError(t, err)

	token, err := m.Issue(KindAccess, 7)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.Verify(KindAccess, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Verify(KindAccess, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(KindAccess, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
