package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenLifetime  = 15 * time.Minute
	refreshTokenLifetime = 7 * 24 * time.Hour
)

// JWT issues and parses the access/refresh token pair. The subject of both
// tokens is the session ID, not the user ID; the session row resolves the
// user and can be revoked server-side.
type JWT struct {
	secret []byte
}

func NewJWT(secret string) *JWT {
	return &JWT{
		secret: []byte(secret),
	}
}

func (j *JWT) GenerateAccessToken(sessionID string) (string, error) {
	return j.generate(sessionID, "access", accessTokenLifetime)
}

func (j *JWT) GenerateRefreshToken(sessionID string) (string, error) {
	return j.generate(sessionID, "refresh", refreshTokenLifetime)
}

func (j *JWT) generate(sessionID string, audience string, lifetime time.Duration) (string, error) {
	now := time.Now()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   sessionID,
		Audience:  jwtlib.ClaimStrings{audience},
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(lifetime)),
	})
	return token.SignedString(j.secret)
}

func (j *JWT) ParseAccessToken(token string) (string, error) {
	return j.parse(token, "access")
}

func (j *JWT) ParseRefreshToken(token string) (string, error) {
	return j.parse(token, "refresh")
}

func (j *JWT) parse(token string, audience string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(
		token,
		&jwtlib.RegisteredClaims{},
		func(t *jwtlib.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return j.secret, nil
		},
		jwtlib.WithAudience(audience),
	)
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*jwtlib.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("missing subject claim")
	}

	return claims.Subject, nil
}
