package services

import (
	"context"

	"github.com/campusworks-org/backend/internal/orm"
)

// AuthTokens is the access/refresh pair issued for a session.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthorizationService interface {
	Register(ctx context.Context, email string, password string, fullName string, userAgent string, ipAddress string) (*orm.Profile, *AuthTokens, error)
	Login(ctx context.Context, email string, password string, userAgent string, ipAddress string) (*orm.Profile, *AuthTokens, error)
	Logout(ctx context.Context, sessionID string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*AuthTokens, error)
}
