package orm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostLike records that a user liked a post. The composite unique index is
// what makes like/unlike from the same user serialize at the storage layer.
type PostLike struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	PostID    uuid.UUID `gorm:"uniqueIndex:idx_post_like_post_user"`
	Post      Post
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_post_like_post_user"`
	User      Profile   `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (l *PostLike) TableName() string {
	return "post_like"
}

func (l *PostLike) BeforeCreate(transaction *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// InsertPostLike creates a like row unless one already exists for the
// (post, user) pair. Reports whether a row was actually created.
func (c *PostgresClient) InsertPostLike(like *PostLike) (bool, error) {
	tx := c.database.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(like)

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

// DeletePostLike removes the like row for the (post, user) pair if present.
// Reports whether a row was actually deleted.
func (c *PostgresClient) DeletePostLike(postID, userID string) (bool, error) {
	tx := c.database.
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&PostLike{})

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (c *PostgresClient) HasPostLike(postID, userID string) (bool, error) {
	var count int64
	tx := c.database.
		Model(&PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count)

	if tx.Error != nil {
		return false, tx.Error
	}

	return count > 0, nil
}

// CountPostLikes returns the exact cardinality of a post's like set.
func (c *PostgresClient) CountPostLikes(postID string) (int64, error) {
	var count int64
	tx := c.database.
		Model(&PostLike{}).
		Where("post_id = ?", postID).
		Count(&count)

	if tx.Error != nil {
		return 0, tx.Error
	}

	return count, nil
}
