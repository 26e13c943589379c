package orm

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresClient struct {
	database *gorm.DB
}

func NewPostgresClient(host string, port string, user string, password string, dbname string) (*PostgresClient, error) {
	return NewPostgresClientFromDSN(
		fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			port,
			user,
			password,
			dbname,
		),
	)
}

// NewPostgresClientFromDSN opens a client from a full connection string.
// Used by the integration tests, which get their DSN from a container.
func NewPostgresClientFromDSN(dsn string) (*PostgresClient, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	rawDatabase, err := database.DB()
	if err != nil {
		return nil, err
	}

	rawDatabase.SetMaxOpenConns(10)
	rawDatabase.SetMaxIdleConns(5)
	rawDatabase.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{
		database: database,
	}, nil
}

// Migrate creates or updates the schema for all models.
func (c *PostgresClient) Migrate() error {
	return c.database.AutoMigrate(
		&Profile{},
		&Session{},
		&Post{},
		&PostLike{},
		&Comment{},
	)
}

func (c *PostgresClient) CountProfiles() (int64, error) {
	var count int64
	if err := c.database.Model(&Profile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (c *PostgresClient) DeleteSessionsByUserID(userID string) error {
	tx := c.database.Where("user_id = ?", userID).Delete(&Session{})
	return tx.Error
}
