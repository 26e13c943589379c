package orm

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is the account row. It doubles as the public profile card shown
// next to posts and comments.
type Profile struct {
	ID          uuid.UUID `gorm:"primaryKey"`
	Email       string    `gorm:"uniqueIndex"`
	Password    string
	FullName    string
	Pronouns    string
	Bio         string
	PhoneNumber string
	AvatarURL   string
	Skills      pq.StringArray `gorm:"type:text[]"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Profile) TableName() string {
	return "profile"
}

func (p *Profile) BeforeCreate(transaction *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Profile) GetID() uuid.UUID {
	return p.ID
}

func (p Profile) GetCreatedAt() time.Time {
	return p.CreatedAt
}

func (c *PostgresClient) SelectProfileByID(id string) (*Profile, error) {
	var profile Profile
	tx := c.database.
		Where("id = ?", id).
		First(&profile)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &profile, nil
}

func (c *PostgresClient) SelectProfileByEmail(email string) (*Profile, error) {
	var profile Profile
	tx := c.database.
		Where("email = ?", email).
		First(&profile)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &profile, nil
}

func (c *PostgresClient) InsertProfile(profile *Profile) error {
	return c.database.Create(profile).Error
}

// UpsertProfile creates the profile row on first edit and updates it after,
// matching the first-edit flow of the profile dialog.
func (c *PostgresClient) UpsertProfile(profile *Profile) error {
	tx := c.database.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name",
				"pronouns",
				"bio",
				"phone_number",
				"avatar_url",
				"skills",
				"updated_at",
			}),
		}).
		Create(profile)

	return tx.Error
}

func (c *PostgresClient) UpdateProfileAvatar(id string, avatarURL string) error {
	tx := c.database.
		Model(&Profile{}).
		Where("id = ?", id).
		Update("avatar_url", avatarURL)

	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
