package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	clientpkg "github.com/campusworks-org/backend/internal/client"
	eventpkg "github.com/campusworks-org/backend/internal/event"
	httpapipkg "github.com/campusworks-org/backend/internal/httpapi"
	jwtpkg "github.com/campusworks-org/backend/internal/jwt"
	ormpkg "github.com/campusworks-org/backend/internal/orm"
	"github.com/campusworks-org/backend/internal/services"
	authorizationservicepkg "github.com/campusworks-org/backend/internal/services/authorization"
	engagementservicepkg "github.com/campusworks-org/backend/internal/services/engagement"
	postservicepkg "github.com/campusworks-org/backend/internal/services/post"
	profileservicepkg "github.com/campusworks-org/backend/internal/services/profile"
)

var serverCommand = &cobra.Command{
	Use:   "server",
	Short: "server",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverCommandImpl()
	},
}

func serverCommandImpl() error {
	if os.Getenv("DEBUG") == "1" {
		godotenv.Load()
	}

	// Application
	application := fx.New(
		fx.Provide(
			// Logger
			func() *zap.Logger {
				if os.Getenv("DEBUG") == "1" {
					logger, _ := zap.NewDevelopment()
					return logger
				}
				logger, _ := zap.NewProduction()
				return logger
			},

			// Config/Secrets from .env
			func(logger *zap.Logger) (*jwtpkg.JWT, error) {
				jwtSecret := os.Getenv("JWT_SECRET")
				if jwtSecret == "" {
					jwtSecret = "123456"
				}
				return jwtpkg.NewJWT(jwtSecret), nil
			},

			// Clients
			func(logger *zap.Logger) (*ormpkg.PostgresClient, error) {
				database, err := ormpkg.NewPostgresClient(
					os.Getenv("POSTGRES_HOST"),
					os.Getenv("POSTGRES_PORT"),
					os.Getenv("POSTGRES_USER"),
					os.Getenv("POSTGRES_PASSWORD"),
					os.Getenv("POSTGRES_DB"),
				)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(); err != nil {
					return nil, err
				}
				return database, nil
			},
			func(logger *zap.Logger) (*eventpkg.KafkaClient, error) {
				return eventpkg.NewKafkaClient(
					os.Getenv("KAFKA_HOST"),
					os.Getenv("KAFKA_PORT"),
					os.Getenv("KAFKA_TOPIC"),
					os.Getenv("KAFKA_GROUP"),
				)
			},
			func(logger *zap.Logger) *clientpkg.RedisClient {
				return clientpkg.NewRedisClient(
					os.Getenv("REDIS_ADDR"),
					os.Getenv("REDIS_PASSWORD"),
				)
			},
			func(logger *zap.Logger) (*clientpkg.S3Client, error) {
				return clientpkg.NewS3Client(
					context.Background(),
					os.Getenv("S3_PUBLIC_URL"),
				)
			},
			prometheus.NewRegistry,

			// Services
			func(db *ormpkg.PostgresClient, deduper *clientpkg.RedisClient, broker *eventpkg.KafkaClient, images *clientpkg.S3Client, logger *zap.Logger) services.EngagementService {
				return engagementservicepkg.NewEngagementService(
					db,
					deduper,
					broker,
					images,
					engagementservicepkg.Config{
						ViewDedupPolicy: engagementservicepkg.ViewDedupPolicy(os.Getenv("VIEW_DEDUP_POLICY")),
						ViewDedupWindow: 30 * time.Minute,
						ImageBucket:     os.Getenv("S3_POST_IMAGE_BUCKET"),
					},
					logger,
				)
			},
			func(db *ormpkg.PostgresClient, images *clientpkg.S3Client, logger *zap.Logger) services.PostService {
				return postservicepkg.NewPostService(
					db,
					images,
					postservicepkg.Config{
						ImageBucket: os.Getenv("S3_POST_IMAGE_BUCKET"),
					},
					logger,
				)
			},
			func(db *ormpkg.PostgresClient, images *clientpkg.S3Client, logger *zap.Logger) services.ProfileService {
				return profileservicepkg.NewProfileService(
					db,
					images,
					profileservicepkg.Config{
						AvatarBucket: os.Getenv("S3_AVATAR_BUCKET"),
					},
					logger,
				)
			},
			authorizationservicepkg.NewAuthorizationService,

			// HTTP handlers
			httpapipkg.NewAuthorizationHandler,
			httpapipkg.NewPostHandler,
			httpapipkg.NewEngagementHandler,
			httpapipkg.NewProfileHandler,

			// HTTP server
			func(
				lc fx.Lifecycle,
				log *zap.Logger,
				jwt *jwtpkg.JWT,
				db *ormpkg.PostgresClient,
				registry *prometheus.Registry,
				authHandler *httpapipkg.AuthorizationHandler,
				postHandler *httpapipkg.PostHandler,
				engagementHandler *httpapipkg.EngagementHandler,
				profileHandler *httpapipkg.ProfileHandler,
			) *httpapipkg.Server {
				server := httpapipkg.NewServer(
					log,
					jwt,
					db,
					registry,
					os.Getenv("HTTP_HOST"),
					os.Getenv("HTTP_PORT"),
					authHandler,
					postHandler,
					engagementHandler,
					profileHandler,
				)
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return server.Start()
					},
					OnStop: func(ctx context.Context) error {
						return server.Stop(ctx)
					},
				})
				return server
			},
		),
		fx.Invoke(func(*httpapipkg.Server) {}),
	)
	application.Run()

	err := application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(serverCommand)
}
