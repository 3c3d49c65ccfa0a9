package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/adapter/storage"
	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/security"
	"github.com/juakali/walletd/internal/core/user"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) *user.Service {
	t.Helper()
	return user.NewService(storage.NewMemoryStore(), testSecret, time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Register(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash, "password must be stored hashed")

	token, err := svc.Login(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	userID, claims, err := security.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "jane@example.com", "another-pass")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	// Wrong password and unknown email come back identical.
	_, err = svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestMeAndDelete(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Register(context.Background(), "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	me, err := svc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	_, err = svc.Me(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
