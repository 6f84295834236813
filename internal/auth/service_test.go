package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testAuthSetup is a helper struct to hold test dependencies
type testAuthSetup struct {
	service *Service
	store   *FileUserStore
	path    string
	ctx     context.Context
}

func setupTestAuth(t *testing.T, maxDevices int) *testAuthSetup {
	path := filepath.Join(t.TempDir(), "data", "users.json")
	store, err := NewFileUserStore(path, zerolog.Nop())
	require.NoError(t, err)

	svc, err := NewService(Config{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		MaxDevices: maxDevices,
		HashCost:   bcrypt.MinCost,
	}, store, zerolog.Nop())
	require.NoError(t, err)

	return &testAuthSetup{service: svc, store: store, path: path, ctx: context.Background()}
}

// TestNewService_RequiresSecret tests configuration validation
func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(Config{}, nil, zerolog.Nop())
	assert.Error(t, err)
}

// TestCreateUser tests user creation and bcrypt-only storage
func TestCreateUser(t *testing.T) {
	setup := setupTestAuth(t, 2)

	user, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 0, user.ActiveSessions)

	_, err = setup.service.CreateUser(setup.ctx, "alice", "other", false)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = setup.service.CreateUser(setup.ctx, " ", "pw", false)
	assert.Error(t, err)

	data, err := os.ReadFile(setup.path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")

	var dir Directory
	require.NoError(t, json.Unmarshal(data, &dir))
	require.Len(t, dir.Users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(dir.Users[0].PasswordHash), []byte("s3cret")))
}

// TestLoginVerifyLogout tests the session lifecycle
func TestLoginVerifyLogout(t *testing.T) {
	setup := setupTestAuth(t, 2)
	created, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	result, err := setup.service.Login(setup.ctx, "alice", "s3cret", "laptop")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, created.ID, result.User.ID)
	assert.Equal(t, 1, result.User.ActiveSessions)

	identity, err := setup.service.Verify(setup.ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.NotEmpty(t, identity.SessionID)

	require.NoError(t, setup.service.Logout(setup.ctx, result.Token))

	_, err = setup.service.Verify(setup.ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, setup.service.Logout(setup.ctx, result.Token), ErrInvalidToken)
}

// TestVerify_ReportsAdmin tests that the admin flag travels from the directory to the identity
func TestVerify_ReportsAdmin(t *testing.T) {
	setup := setupTestAuth(t, 2)
	created, err := setup.service.CreateUser(setup.ctx, "root", "s3cret", true)
	require.NoError(t, err)
	assert.True(t, created.Admin)
	_, err = setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	for username, wantAdmin := range map[string]bool{"root": true, "alice": false} {
		result, err := setup.service.Login(setup.ctx, username, "s3cret", "laptop")
		require.NoError(t, err)
		assert.Equal(t, wantAdmin, result.User.Admin)

		identity, err := setup.service.Verify(setup.ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, wantAdmin, identity.Admin, username)
	}

	users, err := setup.service.ListUsers(setup.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.False(t, users[0].Admin)
	assert.True(t, users[1].Admin)
}

// TestLogin_InvalidCredentials tests rejected logins
func TestLogin_InvalidCredentials(t *testing.T) {
	setup := setupTestAuth(t, 2)
	_, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	_, err = setup.service.Login(setup.ctx, "alice", "wrong", "laptop")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = setup.service.Login(setup.ctx, "bob", "s3cret", "laptop")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestLogin_DeviceLimit tests the concurrent session cap
func TestLogin_DeviceLimit(t *testing.T) {
	setup := setupTestAuth(t, 2)
	_, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	first, err := setup.service.Login(setup.ctx, "alice", "s3cret", "laptop")
	require.NoError(t, err)
	_, err = setup.service.Login(setup.ctx, "alice", "s3cret", "phone")
	require.NoError(t, err)

	_, err = setup.service.Login(setup.ctx, "alice", "s3cret", "tablet")
	assert.ErrorIs(t, err, ErrDeviceLimit)

	// Logging out frees a slot
	require.NoError(t, setup.service.Logout(setup.ctx, first.Token))
	_, err = setup.service.Login(setup.ctx, "alice", "s3cret", "tablet")
	assert.NoError(t, err)
}

// TestLogin_ExpiredSessionsFreeSlots tests that expired sessions do not count against the cap
func TestLogin_ExpiredSessionsFreeSlots(t *testing.T) {
	setup := setupTestAuth(t, 1)
	_, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	setup.service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := setup.service.Login(setup.ctx, "alice", "s3cret", "laptop")
	require.NoError(t, err)

	// Token issued two hours ago with a one hour TTL
	_, err = setup.service.Verify(setup.ctx, old.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	setup.service.now = time.Now
	_, err = setup.service.Login(setup.ctx, "alice", "s3cret", "phone")
	assert.NoError(t, err)
}

// TestVerify_RejectsForgedTokens tests signature and claim checks
func TestVerify_RejectsForgedTokens(t *testing.T) {
	setup := setupTestAuth(t, 2)
	created, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{
		Subject:   created.ID,
		ID:        "not-a-session",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	unknownSession, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":           "",
		"garbage":         "not.a.token",
		"wrong key":       wrongKey,
		"unknown session": unknownSession,
		"none algorithm":  unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := setup.service.Verify(setup.ctx, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

// TestRevokeSessions tests the management operation
func TestRevokeSessions(t *testing.T) {
	setup := setupTestAuth(t, 2)
	created, err := setup.service.CreateUser(setup.ctx, "alice", "s3cret", false)
	require.NoError(t, err)

	result, err := setup.service.Login(setup.ctx, "alice", "s3cret", "laptop")
	require.NoError(t, err)

	require.NoError(t, setup.service.RevokeSessions(setup.ctx, created.ID))

	_, err = setup.service.Verify(setup.ctx, result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = setup.service.RevokeSessions(setup.ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// TestListUsers tests the sorted public listing
func TestListUsers(t *testing.T) {
	setup := setupTestAuth(t, 2)
	_, err := setup.service.CreateUser(setup.ctx, "zoe", "pw", false)
	require.NoError(t, err)
	_, err = setup.service.CreateUser(setup.ctx, "adam", "pw", false)
	require.NoError(t, err)
	_, err = setup.service.Login(setup.ctx, "zoe", "pw", "phone")
	require.NoError(t, err)

	users, err := setup.service.ListUsers(setup.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "adam", users[0].Username)
	assert.Equal(t, "zoe", users[1].Username)
	assert.Equal(t, 1, users[1].ActiveSessions)

	one, err := setup.service.User(setup.ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "zoe", one.Username)

	_, err = setup.service.User(setup.ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
