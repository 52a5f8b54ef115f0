package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/domain"
)

func TestHashPassword_Verify(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="))

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_Limits(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordLength+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-hash", "pw"))
	assert.False(t, VerifyPassword("$bcrypt$v=19$m=1,t=1,p=1$AA$AA", "pw"))
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "auth.key")

	first, err := LoadOrGenerateKey(path)
	require.NoError(t, err)
	assert.Len(t, first, KeySize)

	second, err := LoadOrGenerateKey(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrGenerateKey_RejectsBadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.key")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(path)
	assert.Error(t, err)
}

func newTokenService(t *testing.T, lifetime time.Duration) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(filepath.Join(t.TempDir(), "auth.key"))
	require.NoError(t, err)
	svc, err := NewTokenService(key, lifetime)
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueVerify(t *testing.T) {
	svc := newTokenService(t, time.Hour)
	user := &domain.User{ID: "usr-1", Email: "ada@example.com"}

	token, expires, err := svc.Issue(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "usr-1", claims.Subject)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := newTokenService(t, time.Minute)
	token, _, err := svc.Issue(&domain.User{ID: "usr-1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	issuer := newTokenService(t, time.Hour)
	verifier := newTokenService(t, time.Hour)

	token, _, err := issuer.Issue(&domain.User{ID: "usr-1"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
	_, err = verifier.Verify("garbage")
	assert.Error(t, err)
}

func TestNewTokenService_KeySize(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour)
	assert.Error(t, err)
}
