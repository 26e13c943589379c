package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	jwtpkg "github.com/campusworks-org/backend/internal/jwt"
	"github.com/campusworks-org/backend/internal/lib"
	"github.com/campusworks-org/backend/internal/services"
	"github.com/campusworks-org/backend/internal/services/authorization"
)

func newAuthorizationService(t *testing.T) services.AuthorizationService {
	t.Helper()
	return authorization.NewAuthorizationService(dbClient, jwtpkg.NewJWT("test-secret"), zap.NewNop())
}

func uniqueEmail() string {
	return fmt.Sprintf("%s@campus.test", uuid.NewString())
}

func TestRegisterAndLogin(t *testing.T) {
	service := newAuthorizationService(t)
	email := uniqueEmail()

	profile, tokens, err := service.Register(context.Background(), email, "password123", "Avery Kim", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, email, profile.Email)
	assert.NotEqual(t, "password123", profile.Password, "passwords are stored hashed")
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	loggedIn, loginTokens, err := service.Login(context.Background(), email, "password123", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)
}

func TestRegisterValidation(t *testing.T) {
	service := newAuthorizationService(t)

	_, _, err := service.Register(context.Background(), "not-an-email", "password123", "Avery Kim", "", "")
	assert.ErrorIs(t, err, lib.ErrValidation)

	_, _, err = service.Register(context.Background(), uniqueEmail(), "short", "Avery Kim", "", "")
	assert.ErrorIs(t, err, lib.ErrValidation)

	_, _, err = service.Register(context.Background(), uniqueEmail(), "password123", "  ", "", "")
	assert.ErrorIs(t, err, lib.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := newAuthorizationService(t)
	email := uniqueEmail()

	_, _, err := service.Register(context.Background(), email, "password123", "Avery Kim", "", "")
	require.NoError(t, err)

	_, _, err = service.Register(context.Background(), email, "password123", "Someone Else", "", "")
	assert.ErrorIs(t, err, lib.ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	service := newAuthorizationService(t)
	email := uniqueEmail()

	_, _, err := service.Register(context.Background(), email, "password123", "Avery Kim", "", "")
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), email, "wrong-password", "", "")
	assert.ErrorIs(t, err, lib.ErrUnauthenticated)
}

func TestRefreshAndLogout(t *testing.T) {
	service := newAuthorizationService(t)

	_, tokens, err := service.Register(context.Background(), uniqueEmail(), "password123", "Avery Kim", "", "")
	require.NoError(t, err)

	refreshed, err := service.RefreshTokens(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	sessionID, err := jwtpkg.NewJWT("test-secret").ParseRefreshToken(tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), sessionID))

	_, err = service.RefreshTokens(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, lib.ErrUnauthenticated, "a revoked session cannot refresh")

	// Logout is idempotent.
	assert.NoError(t, service.Logout(context.Background(), sessionID))
}
