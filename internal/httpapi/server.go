package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	jwtpkg "github.com/campusworks-org/backend/internal/jwt"
	"github.com/campusworks-org/backend/internal/middleware"
	"github.com/campusworks-org/backend/internal/orm"
)

type Server struct {
	logger *zap.Logger
	host   string
	port   string
	server *http.Server
}

// NewServer wires routes and the middleware chain: logging, metrics, rate
// limiting, then authorization with a bypass set for public reads.
func NewServer(
	logger *zap.Logger,
	jwt *jwtpkg.JWT,
	db *orm.PostgresClient,
	registry *prometheus.Registry,
	host string,
	port string,
	authHandler *AuthorizationHandler,
	postHandler *PostHandler,
	engagementHandler *EngagementHandler,
	profileHandler *ProfileHandler,
) *Server {
	mux := http.NewServeMux()

	// Authorization
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// Posts
	mux.HandleFunc("GET /v1/posts", postHandler.List)
	mux.HandleFunc("POST /v1/posts", postHandler.Create)
	mux.HandleFunc("GET /v1/posts/{id}", engagementHandler.GetPostDetail)
	mux.HandleFunc("PATCH /v1/posts/{id}", postHandler.Update)
	mux.HandleFunc("DELETE /v1/posts/{id}", engagementHandler.DeletePost)
	mux.HandleFunc("POST /v1/posts/images", postHandler.UploadImage)

	// Engagement
	mux.HandleFunc("POST /v1/posts/{id}/views", engagementHandler.RecordView)
	mux.HandleFunc("POST /v1/posts/{id}/applications", engagementHandler.RecordApplication)
	mux.HandleFunc("POST /v1/posts/{id}/likes", engagementHandler.Like)
	mux.HandleFunc("DELETE /v1/posts/{id}/likes", engagementHandler.Unlike)
	mux.HandleFunc("POST /v1/posts/{id}/comments", engagementHandler.AddComment)
	mux.HandleFunc("GET /v1/posts/{id}/comments", engagementHandler.ListComments)

	// Profiles
	mux.HandleFunc("GET /v1/users/me", profileHandler.GetCurrent)
	mux.HandleFunc("PUT /v1/users/me", profileHandler.Update)
	mux.HandleFunc("POST /v1/users/me/avatar", profileHandler.UploadAvatar)
	mux.HandleFunc("GET /v1/users/{id}", profileHandler.Get)

	// Operational
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	bypass := map[string]bool{
		"POST /v1/auth/register":        true,
		"POST /v1/auth/login":           true,
		"POST /v1/auth/refresh":         true,
		"GET /v1/posts":                 true,
		"GET /v1/posts/{id}":            true,
		"GET /v1/posts/{id}/comments":   true,
		"POST /v1/posts/{id}/views":     true,
		"GET /v1/users/{id}":            true,
		"GET /metrics":                  true,
		"GET /healthz":                  true,
	}

	pattern := func(r *http.Request) string {
		_, matched := mux.Handler(r)
		return matched
	}

	var handler http.Handler = mux
	handler = middleware.NewAuthorizationMiddleware(logger, jwt, db, bypass, pattern)(handler)
	handler = middleware.NewRateLimiter(5, 600).Handler(handler)
	handler = middleware.NewMetrics(registry).Handler(handler, pattern)
	handler = middleware.NewLoggingMiddleware(logger)(handler)

	return &Server{
		logger: logger,
		host:   host,
		port:   port,
		server: &http.Server{
			Addr:    net.JoinHostPort(host, port),
			Handler: handler,
		},
	}
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	go func() {
		s.logger.Info("HTTP server started", zap.String("addr", listener.Addr().String()))
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("HTTP server stopped gracefully")
	return nil
}
