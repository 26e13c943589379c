package orm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Session struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	UserID    uuid.UUID
	User      Profile `gorm:"foreignKey:UserID"`
	UserAgent string
	IpAddress string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) TableName() string {
	return "session"
}

func (s *Session) BeforeCreate(transaction *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *PostgresClient) SelectSessionByID(ID string) (*Session, error) {
	var session Session
	tx := c.database.
		Where("id = ?", ID).
		First(&session)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &session, nil
}

func (c *PostgresClient) InsertSession(session *Session) error {
	return c.database.Create(session).Error
}

// UpdateSession bumps the session activity timestamp.
func (c *PostgresClient) UpdateSession(session *Session) error {
	tx := c.database.
		Model(session).
		Update("updated_at", time.Now())
	return tx.Error
}

func (c *PostgresClient) DeleteSession(session *Session) error {
	return c.database.Delete(session).Error
}
