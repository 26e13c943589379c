package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusworks-org/backend/internal/lib"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	sessionIDKey contextKey = "session_id"
)

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetUserID returns the authenticated user's ID, or an empty string for an
// anonymous request.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}

// RequireUserUUID returns the authenticated user's ID or an
// Unauthenticated error for anonymous requests.
func RequireUserUUID(ctx context.Context) (uuid.UUID, error) {
	userID := GetUserID(ctx)
	if userID == "" {
		return uuid.Nil, lib.UnauthenticatedError("")
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, lib.UnauthenticatedError("")
	}
	return parsed, nil
}
