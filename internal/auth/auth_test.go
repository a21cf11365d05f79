package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testVerifier(t *testing.T) *Bcrypt {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	v, err := NewBcrypt("admin", string(h))
	require.NoError(t, err)
	return v
}

func TestBcryptVerify(t *testing.T) {
	v := testVerifier(t)
	assert.True(t, v.Verify("admin", "s3cret"))
	assert.False(t, v.Verify("admin", "wrong"))
	assert.False(t, v.Verify("root", "s3cret"))

	_, err := NewBcrypt("admin", "not-a-hash")
	require.Error(t, err)
	_, err = NewBcrypt("", "")
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	v, err := NewBcrypt("a", h)
	require.NoError(t, err)
	assert.True(t, v.Verify("a", "pw"))
}

func TestSessionsLifecycle(t *testing.T) {
	s := NewSessions(testVerifier(t), time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.Login("admin", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := s.Login("admin", "s3cret")
	require.NoError(t, err)
	got, err := s.Check(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	now = now.Add(2 * time.Minute)
	_, err = s.Check(sess.Token)
	require.ErrorIs(t, err, ErrNoSession)

	sess, err = s.Login("admin", "s3cret")
	require.NoError(t, err)
	s.Logout(sess.Token)
	_, err = s.Check(sess.Token)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestNilVerifierRejects(t *testing.T) {
	_, err := NewSessions(nil, 0).Login("admin", "x")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDenyAllRejectsLogin(t *testing.T) {
	s := NewSessions(DenyAll{}, time.Minute)
	_, err := s.Login("admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
