package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/pkg/config"
	"github.com/amirasaad/fintechflow/pkg/domain"
	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/service/auth"
	"github.com/amirasaad/fintechflow/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, secret, raw string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte(secret), nil })
	require.NoError(t, err)
	return token
}

func TestLogin(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	u := a.RegisterUser(t, "login@example.com", "Login User")

	got, err := a.AuthService.Login(ctx, " LOGIN@example.com", testutils.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = a.AuthService.Login(ctx, "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, user.ErrUserUnauthorized)

	_, err = a.AuthService.Login(ctx, "nobody@example.com", testutils.TestPassword)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGenerateToken_Claims(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	admin := a.RegisterUser(t, "admin@example.com", "Admin")

	raw, err := a.AuthService.GenerateToken(ctx, admin)
	require.NoError(t, err)

	token := parse(t, "test-secret", raw)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, admin.ID.String(), claims[auth.ClaimUserID])
	assert.Equal(t, admin.Email, claims[auth.ClaimEmail])
	assert.Equal(t, string(user.RoleAdmin), claims[auth.ClaimRole])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp.Time, time.Minute)

	id, err := a.AuthService.GetCurrentUserID(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id)
	role, err := a.AuthService.GetCurrentRole(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, role)
}

func TestGetCurrentRole_FollowsStoredUser(t *testing.T) {
	a := testutils.NewTestApp(t)
	ctx := context.Background()
	u := a.RegisterUser(t, testutils.RandomEmail(), "Regular")

	raw, err := a.AuthService.GenerateToken(ctx, u)
	require.NoError(t, err)
	token := parse(t, "test-secret", raw)

	role, err := a.AuthService.GetCurrentRole(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, role)

	_, err = a.UserService.Promote(ctx, u.Email)
	require.NoError(t, err)
	role, err = a.AuthService.GetCurrentRole(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, role)

	ghost := &user.User{ID: uuid.New(), Email: "ghost@example.com", Role: user.RoleAdmin}
	raw, err = a.AuthService.GenerateToken(ctx, ghost)
	require.NoError(t, err)
	_, err = a.AuthService.GetCurrentRole(ctx, parse(t, "test-secret", raw))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTStrategy_RejectsBadTokens(t *testing.T) {
	s := auth.NewJWTStrategy(&config.Jwt{Secret: "s", Expiry: time.Hour}, testutils.Logger())

	_, err := s.GetCurrentUserID(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "not-a-uuid"})
	token.Valid = true
	_, err = s.GetCurrentUserID(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
