package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	jwtpkg "github.com/campusworks-org/backend/internal/jwt"
	ormpkg "github.com/campusworks-org/backend/internal/orm"
)

// NewAuthorizationMiddleware resolves the Bearer token to a session and puts
// the session and user IDs on the request context. Routes whose pattern is
// listed in bypass stay reachable anonymously; their handlers see an empty
// user ID. pattern resolves the route pattern before dispatch, since
// r.Pattern is only set once the mux has matched.
func NewAuthorizationMiddleware(logger *zap.Logger, jwt *jwtpkg.JWT, database *ormpkg.PostgresClient, bypass map[string]bool, pattern func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			if header == "" && bypass[pattern(r)] {
				next.ServeHTTP(w, r)
				return
			}

			if !strings.HasPrefix(header, "Bearer ") {
				logger.Debug("missing bearer token", zap.String("path", r.URL.Path))
				unauthenticated(w, "missing or invalid token")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")

			id, err := jwt.ParseAccessToken(token)
			if err != nil {
				logger.Debug("invalid access token", zap.Error(err))
				unauthenticated(w, "missing or invalid token")
				return
			}

			session, err := database.SelectSessionByID(id)
			if err != nil {
				logger.Debug("session not found", zap.String("session_id", id))
				unauthenticated(w, "session revoked")
				return
			}

			if err := database.UpdateSession(session); err != nil {
				logger.Error("error updating session activity", zap.Error(err))
			}

			ctx := SetSessionID(r.Context(), id)
			ctx = SetUserID(ctx, session.UserID.String())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
