package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	eventpkg "github.com/campusworks-org/backend/internal/event"
	ormpkg "github.com/campusworks-org/backend/internal/orm"
	workerpkg "github.com/campusworks-org/backend/internal/worker"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "worker",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workerCommandImpl()
	},
}

func workerCommandImpl() error {
	if os.Getenv("DEBUG") == "1" {
		godotenv.Load()
	}

	// Application
	application := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() *zap.Logger {
				if os.Getenv("DEBUG") == "1" {
					logger, _ := zap.NewDevelopment()
					return logger
				}
				logger, _ := zap.NewProduction()
				return logger
			},

			// Kafka client
			func(logger *zap.Logger) (*eventpkg.KafkaClient, error) {
				kafkaHost := os.Getenv("KAFKA_HOST")
				if kafkaHost == "" {
					kafkaHost = "127.0.0.1"
				}

				kafkaPort := os.Getenv("KAFKA_PORT")
				if kafkaPort == "" {
					kafkaPort = "9092"
				}

				kafkaTopic := os.Getenv("KAFKA_TOPIC")
				if kafkaTopic == "" {
					kafkaTopic = "engagement"
				}

				kafkaGroup := os.Getenv("KAFKA_GROUP")
				if kafkaGroup == "" {
					kafkaGroup = "engagement"
				}

				return eventpkg.NewKafkaClient(
					kafkaHost,
					kafkaPort,
					kafkaTopic,
					kafkaGroup,
				)
			},

			// Postgres client
			func(logger *zap.Logger) (*ormpkg.PostgresClient, error) {
				return ormpkg.NewPostgresClient(
					os.Getenv("POSTGRES_HOST"),
					os.Getenv("POSTGRES_PORT"),
					os.Getenv("POSTGRES_USER"),
					os.Getenv("POSTGRES_PASSWORD"),
					os.Getenv("POSTGRES_DB"),
				)
			},

			// Worker
			func(lc fx.Lifecycle, logger *zap.Logger, broker *eventpkg.KafkaClient, database *ormpkg.PostgresClient) *workerpkg.Worker {
				worker := workerpkg.NewWorker(logger, broker, database)
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return worker.Start()
					},
					OnStop: func(ctx context.Context) error {
						return worker.Stop()
					},
				})
				return worker
			},
		),
		fx.Invoke(func(*workerpkg.Worker) {}),
	)
	application.Run()

	err := application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(workerCommand)
}
